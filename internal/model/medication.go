package model

import "time"

// Medication describes a dosing schedule for a single drug as stored
// in the `medications` table. The schedule is defined by an anchor
// instant (StartDate at StartTime) and a fixed hourly interval: the
// first dose happens exactly at the anchor and every following dose
// IntervalHours later, until EndDate (inclusive). Concrete dose
// instants are never stored; they are recomputed per requested date
// by the schedule package.
//
// StartDate and EndDate are nullable. A nil bound means the schedule
// is unconstrained on that side when filtering by date. Rows created
// through the API always carry both bounds; nil only appears on
// legacy data, and a medication without a StartDate produces no
// occurrences because there is no anchor to step from.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the medication.
//  Name          – drug name, unique per user.
//  DoseMg        – milligrams per dose; opaque to scheduling.
//  StartDate     – first day the schedule is active (nullable).
//  StartTime     – clock time "HH:mm" of the very first dose.
//  EndDate       – last active day, inclusive (nullable).
//  IntervalHours – whole hours between consecutive doses, >= 1.
//  Color         – hex color used by clients to render the drug.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Medication struct {
	ID            uint64     // medications.id
	UserID        uint64     // medications.user_id
	Name          string     // medications.name
	DoseMg        int        // medications.dose_mg
	StartDate     *time.Time // medications.start_date (nullable DATE)
	StartTime     string     // medications.start_time ("HH:mm")
	EndDate       *time.Time // medications.end_date (nullable DATE)
	IntervalHours int        // medications.interval_hours
	Color         string     // medications.color
	CreatedAt     time.Time  // medications.created_at
	UpdatedAt     time.Time  // medications.updated_at
}
