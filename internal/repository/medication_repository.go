package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelarde/medtrack/internal/model"
	"github.com/avelarde/medtrack/internal/schedule"
)

// MedicationRepo provides CRUD operations for medication schedules.
// Every method is scoped to the owning user; a medication belonging
// to someone else behaves exactly like one that does not exist
// (sql.ErrNoRows). Dates are stored as DATE columns and the start
// time as a "HH:mm" string, mirroring the key format the schedule
// generator emits.
type MedicationRepo struct {
	db *sql.DB
}

// NewMedicationRepo returns a new MedicationRepo bound to the given database.
func NewMedicationRepo(db *sql.DB) *MedicationRepo { return &MedicationRepo{db: db} }

const medicationCols = "id, user_id, name, dose_mg, start_date, start_time, end_date, interval_hours, color, created_at, updated_at"

func scanMedication(row interface {
	Scan(dest ...interface{}) error
}) (model.Medication, error) {
	var m model.Medication
	var start, end sql.NullTime
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.DoseMg, &start, &m.StartTime,
		&end, &m.IntervalHours, &m.Color, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Medication{}, err
	}
	if start.Valid {
		t := start.Time
		m.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		m.EndDate = &t
	}
	return m, nil
}

func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// ListByUser returns every medication the user owns, ordered by name
// for deterministic output.
func (r *MedicationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Medication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meds := make([]model.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meds, nil
}

// GetByIDForUser returns a single medication owned by the user, or
// sql.ErrNoRows when it does not exist or belongs to someone else.
func (r *MedicationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.Medication, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE id = ? AND user_id = ?`, id, userID)
	return scanMedication(row)
}

// Create inserts a new medication and populates the generated ID and
// timestamps on the provided value. A (user_id, name) collision is
// reported as ErrNameExists.
func (r *MedicationRepo) Create(ctx context.Context, m *model.Medication) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO medications (user_id, name, dose_mg, start_date, start_time, end_date, interval_hours, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.Name, m.DoseMg, dateArg(m.StartDate), m.StartTime,
		dateArg(m.EndDate), m.IntervalHours, m.Color)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	row := r.db.QueryRowContext(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE id = ?`, m.ID)
	stored, err := scanMedication(row)
	if err != nil {
		return err
	}
	*m = stored
	return nil
}

// Update persists changed fields of a medication the user owns. When
// any timing field differs from the stored row (interval, start time,
// start date, end date), every consumption record for the medication
// is deleted in the same transaction: their time-of-day keys are only
// meaningful relative to the old timeline. Either both the new fields
// and the ledger deletion land, or neither does.
//
// It returns whether the ledger was invalidated. sql.ErrNoRows is
// returned when the medication does not exist for the user.
func (r *MedicationRepo) Update(ctx context.Context, m *model.Medication) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the stored row so the timing comparison and the update see
	// the same state under concurrent writers.
	row := tx.QueryRowContext(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE id = ? AND user_id = ? FOR UPDATE`,
		m.ID, m.UserID)
	stored, err := scanMedication(row)
	if err != nil {
		return false, err
	}

	invalidate := schedule.TimingChanged(stored, *m)

	_, err = tx.ExecContext(ctx,
		`UPDATE medications SET name = ?, dose_mg = ?, start_date = ?, start_time = ?, end_date = ?, interval_hours = ?, color = ?
		 WHERE id = ? AND user_id = ?`,
		m.Name, m.DoseMg, dateArg(m.StartDate), m.StartTime, dateArg(m.EndDate),
		m.IntervalHours, m.Color, m.ID, m.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return false, ErrNameExists
		}
		return false, err
	}

	if invalidate {
		if err := deleteConsumptionsTx(ctx, tx, m.ID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return invalidate, nil
}

// Delete removes a medication the user owns together with its
// consumption records, in one transaction. sql.ErrNoRows is returned
// when nothing was deleted.
func (r *MedicationRepo) Delete(ctx context.Context, id, userID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Ownership check before touching ledger rows.
	var owner uint64
	if err := tx.QueryRowContext(ctx,
		`SELECT user_id FROM medications WHERE id = ?`, id).Scan(&owner); err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}

	if err := deleteConsumptionsTx(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
