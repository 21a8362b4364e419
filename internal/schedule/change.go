package schedule

import (
	"time"

	"github.com/avelarde/medtrack/internal/model"
)

// TimingChanged reports whether any field that shapes the dose
// timeline differs between the stored and incoming definition:
// IntervalHours, StartTime, StartDate or EndDate. Name, dose and
// color changes do not count. A true result means every existing
// consumption record for the medication is keyed against times that
// may no longer exist and must be dropped alongside the update.
func TimingChanged(old, incoming model.Medication) bool {
	if old.IntervalHours != incoming.IntervalHours {
		return true
	}
	if old.StartTime != incoming.StartTime {
		return true
	}
	if !sameDate(old.StartDate, incoming.StartDate) {
		return true
	}
	if !sameDate(old.EndDate, incoming.EndDate) {
		return true
	}
	return false
}

// sameDate compares two nullable dates by calendar day.
func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return dateOnly(*a).Equal(dateOnly(*b))
}
