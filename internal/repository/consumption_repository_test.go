package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ledgerUser = int64(1)
	ledgerMed  = int64(2)
	ledgerDay  = "2026-02-03"
)

func recordRows(id, createdAt int64, consumed bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "medication_id", "date", "time", "consumed", "created_at"}).
		AddRow(id, ledgerUser, ledgerMed, time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC), "08:00", consumed, createdAt)
}

// A fresh key inserts once; a second write for the same key updates
// that row in place, keeps created_at, and never issues another
// INSERT.
func TestUpsertSecondWriteWinsKeepsCreatedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConsumptionRepo(db)

	const createdAt = int64(1770000000000)

	// First write: key absent, insert.
	mock.ExpectQuery("SELECT id FROM consumption_records").
		WithArgs(ledgerUser, ledgerMed, ledgerDay, "08:00").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO consumption_records").
		WithArgs(ledgerUser, ledgerMed, ledgerDay, "08:00", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT id, user_id, medication_id, date, time, consumed, created_at").
		WithArgs(int64(11)).
		WillReturnRows(recordRows(11, createdAt, true))

	first, err := repo.Upsert(context.Background(), 1, 2, ledgerDay, "08:00", true)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), first.ID)
	assert.True(t, first.Consumed)
	assert.Equal(t, createdAt, first.CreatedAt)

	// Second write, same key: row found, updated by id. No INSERT is
	// expected, so a duplicate insert would fail ExpectationsWereMet.
	mock.ExpectQuery("SELECT id FROM consumption_records").
		WithArgs(ledgerUser, ledgerMed, ledgerDay, "08:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec("UPDATE consumption_records SET consumed").
		WithArgs(false, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, medication_id, date, time, consumed, created_at").
		WithArgs(int64(11)).
		WillReturnRows(recordRows(11, createdAt, false))

	second, err := repo.Upsert(context.Background(), 1, 2, ledgerDay, "08:00", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Consumed)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// When a concurrent request wins the insert race, the resulting 1062
// duplicate-key error is retried as an update of the winner's row
// instead of surfacing to the caller.
func TestUpsertDuplicateKeyRaceRetriedAsUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConsumptionRepo(db)

	mock.ExpectQuery("SELECT id FROM consumption_records").
		WithArgs(ledgerUser, ledgerMed, ledgerDay, "08:00").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO consumption_records").
		WithArgs(ledgerUser, ledgerMed, ledgerDay, "08:00", true, sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-2-2026-02-03-08:00' for key 'uniq_occurrence'"))
	mock.ExpectExec("UPDATE consumption_records SET consumed").
		WithArgs(true, ledgerUser, ledgerMed, ledgerDay, "08:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT c.id, c.user_id, c.medication_id").
		WithArgs(ledgerUser, ledgerMed, ledgerDay, "08:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "medication_id", "date", "time", "consumed", "created_at", "name"}).
			AddRow(11, ledgerUser, ledgerMed, time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC), "08:00", true, int64(1770000000000), "amoxicillin"))

	rec, err := repo.Upsert(context.Background(), 1, 2, ledgerDay, "08:00", true)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), rec.ID)
	assert.True(t, rec.Consumed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// A non-duplicate insert failure is returned as-is.
func TestUpsertInsertErrorSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConsumptionRepo(db)

	mock.ExpectQuery("SELECT id FROM consumption_records").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO consumption_records").
		WillReturnError(errors.New("Error 1213 (40001): Deadlock found"))

	_, err = repo.Upsert(context.Background(), 1, 2, ledgerDay, "08:00", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1213")

	assert.NoError(t, mock.ExpectationsWereMet())
}
