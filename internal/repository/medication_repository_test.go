package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelarde/medtrack/internal/model"
)

func storedMedication() model.Medication {
	start := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	return model.Medication{
		ID:            5,
		UserID:        1,
		Name:          "amoxicillin",
		DoseMg:        500,
		StartDate:     &start,
		StartTime:     "08:00",
		EndDate:       &end,
		IntervalHours: 8,
		Color:         "#3498db",
	}
}

func medicationRows(m model.Medication) *sqlmock.Rows {
	now := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "dose_mg", "start_date", "start_time",
		"end_date", "interval_hours", "color", "created_at", "updated_at",
	}).AddRow(m.ID, m.UserID, m.Name, m.DoseMg, *m.StartDate, m.StartTime,
		*m.EndDate, m.IntervalHours, m.Color, now, now)
}

func expectUpdateStmt(mock sqlmock.Sqlmock, m model.Medication) {
	mock.ExpectExec("UPDATE medications SET").
		WithArgs(m.Name, m.DoseMg, m.StartDate.Format("2006-01-02"), m.StartTime,
			m.EndDate.Format("2006-01-02"), m.IntervalHours, m.Color, int64(m.ID), int64(m.UserID)).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

// Changing a timing field deletes every consumption record of the
// medication inside the same transaction as the update.
func TestUpdateTimingChangeClearsLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMedicationRepo(db)

	incoming := storedMedication()
	incoming.IntervalHours = 12

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, name, dose_mg, start_date, start_time, end_date, interval_hours, color, created_at, updated_at FROM medications").
		WithArgs(int64(5), int64(1)).
		WillReturnRows(medicationRows(storedMedication()))
	expectUpdateStmt(mock, incoming)
	mock.ExpectExec("DELETE FROM consumption_records").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	invalidated, err := repo.Update(context.Background(), &incoming)
	require.NoError(t, err)
	assert.True(t, invalidated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Renaming or re-dosing leaves the ledger alone: no DELETE runs and
// the caller is told nothing was invalidated.
func TestUpdateNonTimingChangeKeepsLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMedicationRepo(db)

	incoming := storedMedication()
	incoming.Name = "amoxicillin forte"
	incoming.DoseMg = 875
	incoming.Color = "#e74c3c"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, name, dose_mg, start_date, start_time, end_date, interval_hours, color, created_at, updated_at FROM medications").
		WithArgs(int64(5), int64(1)).
		WillReturnRows(medicationRows(storedMedication()))
	expectUpdateStmt(mock, incoming)
	mock.ExpectCommit()

	invalidated, err := repo.Update(context.Background(), &incoming)
	require.NoError(t, err)
	assert.False(t, invalidated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Deleting a medication drops its ledger rows first, in the same
// transaction.
func TestDeleteCascadesLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMedicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM medications").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM consumption_records").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM medications").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A delete attempted by a non-owner rolls back before touching any
// rows.
func TestDeleteForeignMedicationForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMedicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM medications").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(9))
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
