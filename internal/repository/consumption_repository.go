package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelarde/medtrack/internal/model"
)

// ConsumptionRepo is the durable ledger of whether dose occurrences
// were taken. Rows are keyed by (user, medication, date, time) and
// the table's unique constraint over that tuple is the only
// concurrency control: the upsert never surfaces a duplicate-key
// failure to callers. The ledger does not validate that a time is a
// real occurrence of the medication's schedule; that is deliberately
// the caller's concern, making this a generic keyed boolean store.
type ConsumptionRepo struct {
	db *sql.DB
}

// NewConsumptionRepo returns a new ConsumptionRepo bound to the given database.
func NewConsumptionRepo(db *sql.DB) *ConsumptionRepo { return &ConsumptionRepo{db: db} }

// ConsumptionDetail is a ledger row joined with the medication name,
// shaped for API responses.
type ConsumptionDetail struct {
	ID             uint64 `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	MedicationID   uint64 `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Consumed       bool   `json:"consumed"`
}

// Upsert records the consumption state for one occurrence key,
// guaranteeing at most one row per key afterwards. An existing row is
// updated in place; otherwise a new row is inserted with created_at
// set once. When a concurrent request wins the insert race, the
// resulting duplicate-key error is retried as an update instead of
// being returned.
func (r *ConsumptionRepo) Upsert(ctx context.Context, userID, medicationID uint64, date, clock string, consumed bool) (model.ConsumptionRecord, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM consumption_records WHERE user_id = ? AND medication_id = ? AND date = ? AND time = ?`,
		userID, medicationID, date, clock).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, insErr := r.db.ExecContext(ctx,
			`INSERT INTO consumption_records (user_id, medication_id, date, time, consumed, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, medicationID, date, clock, consumed, time.Now().UnixMilli())
		if insErr != nil {
			if !isDuplicateKey(insErr) {
				return model.ConsumptionRecord{}, insErr
			}
			// Lost the race to a concurrent insert with the same key;
			// fall through to update that row.
			return r.updateByKey(ctx, userID, medicationID, date, clock, consumed)
		}
		newID, insErr := res.LastInsertId()
		if insErr != nil {
			return model.ConsumptionRecord{}, insErr
		}
		return r.getByID(ctx, uint64(newID))
	case err != nil:
		return model.ConsumptionRecord{}, err
	default:
		_, err := r.db.ExecContext(ctx,
			`UPDATE consumption_records SET consumed = ? WHERE id = ?`, consumed, id)
		if err != nil {
			return model.ConsumptionRecord{}, err
		}
		return r.getByID(ctx, id)
	}
}

func (r *ConsumptionRepo) updateByKey(ctx context.Context, userID, medicationID uint64, date, clock string, consumed bool) (model.ConsumptionRecord, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE consumption_records SET consumed = ? WHERE user_id = ? AND medication_id = ? AND date = ? AND time = ?`,
		consumed, userID, medicationID, date, clock)
	if err != nil {
		return model.ConsumptionRecord{}, err
	}
	rec, _, err := r.getByKey(ctx, userID, medicationID, date, clock)
	return rec, err
}

func (r *ConsumptionRepo) getByID(ctx context.Context, id uint64) (model.ConsumptionRecord, error) {
	var rec model.ConsumptionRecord
	var d time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, medication_id, date, time, consumed, created_at
		 FROM consumption_records WHERE id = ?`, id).
		Scan(&rec.ID, &rec.UserID, &rec.MedicationID, &d, &rec.Time, &rec.Consumed, &rec.CreatedAt)
	if err != nil {
		return model.ConsumptionRecord{}, err
	}
	rec.Date = d.Format("2006-01-02")
	return rec, nil
}

func (r *ConsumptionRepo) getByKey(ctx context.Context, userID, medicationID uint64, date, clock string) (model.ConsumptionRecord, string, error) {
	var rec model.ConsumptionRecord
	var d time.Time
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT c.id, c.user_id, c.medication_id, c.date, c.time, c.consumed, c.created_at, m.name
		 FROM consumption_records c
		 JOIN medications m ON m.id = c.medication_id
		 WHERE c.user_id = ? AND c.medication_id = ? AND c.date = ? AND c.time = ?`,
		userID, medicationID, date, clock).
		Scan(&rec.ID, &rec.UserID, &rec.MedicationID, &d, &rec.Time, &rec.Consumed, &rec.CreatedAt, &name)
	if err != nil {
		return model.ConsumptionRecord{}, "", err
	}
	rec.Date = d.Format("2006-01-02")
	return rec, name, nil
}

// GetByKey returns the single record matching the exact occurrence
// key, or sql.ErrNoRows. Absence is a distinct outcome from a record
// with consumed=false.
func (r *ConsumptionRepo) GetByKey(ctx context.Context, userID, medicationID uint64, date, clock string) (ConsumptionDetail, error) {
	rec, name, err := r.getByKey(ctx, userID, medicationID, date, clock)
	if err != nil {
		return ConsumptionDetail{}, err
	}
	return ConsumptionDetail{
		ID:             rec.ID,
		Date:           rec.Date,
		Time:           rec.Time,
		MedicationID:   rec.MedicationID,
		MedicationName: name,
		Consumed:       rec.Consumed,
	}, nil
}

// ListByUserAndDate returns every ledger row the user has for the
// given day, joined with medication names and ordered by time.
func (r *ConsumptionRepo) ListByUserAndDate(ctx context.Context, userID uint64, date string) ([]ConsumptionDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.date, c.time, c.medication_id, m.name, c.consumed
		 FROM consumption_records c
		 JOIN medications m ON m.id = c.medication_id
		 WHERE c.user_id = ? AND c.date = ?
		 ORDER BY c.time`,
		userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ConsumptionDetail, 0)
	for rows.Next() {
		var d ConsumptionDetail
		var day time.Time
		if err := rows.Scan(&d.ID, &day, &d.Time, &d.MedicationID, &d.MedicationName, &d.Consumed); err != nil {
			return nil, err
		}
		d.Date = day.Format("2006-01-02")
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// deleteConsumptionsTx drops every ledger row of a medication inside
// the caller's transaction. Used by schedule-timing updates and by
// medication deletion so the row removal commits or rolls back with
// the triggering change.
func deleteConsumptionsTx(ctx context.Context, tx *sql.Tx, medicationID uint64) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM consumption_records WHERE medication_id = ?`, medicationID)
	return err
}
