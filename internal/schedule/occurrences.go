// Package schedule computes concrete dose occurrences from medication
// definitions. It is purely functional: nothing here touches storage,
// and every function may be called concurrently. All date and clock
// values are naive local times; the arithmetic is carried out on UTC
// instants so an hour step is always exactly an hour.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avelarde/medtrack/internal/model"
)

// DoseOccurrence is one medication due at one clock time of the
// requested day. The same medication appears once per occurrence, so
// an interval of 6 hours yields up to four entries for it on a full
// day.
type DoseOccurrence struct {
	MedicationID uint64 `json:"id"`
	Name         string `json:"name"`
	DoseMg       int    `json:"dose_mg"`
	Color        string `json:"color"`
	DisplayTime  string `json:"display_time"`
}

// HourGroup collects every occurrence sharing one clock time.
type HourGroup struct {
	Hour        string           `json:"hour"`
	Medications []DoseOccurrence `json:"medications"`
}

// DayPlan is the full answer for one requested date: groups ordered
// ascending by clock time plus the total occurrence count across all
// groups.
type DayPlan struct {
	Date             string      `json:"date"`
	TotalMedications int         `json:"total_medications"`
	GroupsByHour     []HourGroup `json:"groups_by_hour"`
}

// ParseClock parses a "HH:mm" clock string and returns its hour and
// minute components. One-digit hours are accepted on input ("9:05")
// but anything out of range or otherwise malformed is rejected; the
// generator itself always emits zero-padded times.
func ParseClock(s string) (hour, min int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q: want HH:mm", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock %q: bad hour", s)
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q: bad minute", s)
	}
	return hour, min, nil
}

// activeOn reports whether the medication's date range covers the
// given day. A nil bound is unconstrained on that side.
func activeOn(m model.Medication, date time.Time) bool {
	if m.StartDate != nil && date.Before(dateOnly(*m.StartDate)) {
		return false
	}
	if m.EndDate != nil && date.After(dateOnly(*m.EndDate)) {
		return false
	}
	return true
}

// dateOnly truncates an instant to its calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// doseTimesForDate enumerates the clock times ("HH:mm") at which the
// medication is due on the given day.
//
// The first dose is the anchor StartDate@StartTime; dose i is the
// anchor plus i*IntervalHours hours. When the anchor lies before the
// day, the starting index skips straight past all earlier doses:
// ceil(hoursBetween(anchor, dayStart) / interval). From there doses
// are emitted until one passes 23:59:59 of the day. A dose landing on
// 00:00 is a legitimate continuation of the previous day's run and is
// kept.
func doseTimesForDate(m model.Medication, date time.Time) []string {
	if m.StartDate == nil {
		return nil // no anchor instant to step from
	}
	hour, min, err := ParseClock(m.StartTime)
	if err != nil {
		return nil
	}
	interval := m.IntervalHours
	if interval < 1 {
		interval = 1
	}

	sd := *m.StartDate
	first := time.Date(sd.Year(), sd.Month(), sd.Day(), hour, min, 0, 0, time.UTC)
	dayStart := dateOnly(date)
	dayEnd := dayStart.Add(24*time.Hour - time.Second) // 23:59:59 inclusive

	idx := 0
	if first.Before(dayStart) {
		// Complete hours elapsed before the day, rounded up to the
		// next multiple of the interval.
		elapsed := int(dayStart.Sub(first) / time.Hour)
		idx = (elapsed + interval - 1) / interval
	}

	var times []string
	for ; ; idx++ {
		occ := first.Add(time.Duration(idx*interval) * time.Hour)
		if occ.After(dayEnd) {
			break
		}
		times = append(times, fmt.Sprintf("%02d:%02d", occ.Hour(), occ.Minute()))
	}
	return times
}

// OccurrencesForDate projects the given medications onto a single
// calendar day: every dose instant falling inside the day, grouped by
// clock time and sorted ascending by hour then minute. Degenerate
// input (no medications, date outside every range) yields an empty
// plan with TotalMedications zero; there are no error conditions.
func OccurrencesForDate(meds []model.Medication, date time.Time) DayPlan {
	byTime := make(map[string][]DoseOccurrence)
	for _, m := range meds {
		if !activeOn(m, dateOnly(date)) {
			continue
		}
		for _, clock := range doseTimesForDate(m, date) {
			byTime[clock] = append(byTime[clock], DoseOccurrence{
				MedicationID: m.ID,
				Name:         m.Name,
				DoseMg:       m.DoseMg,
				Color:        m.Color,
				DisplayTime:  clock,
			})
		}
	}

	keys := make([]string, 0, len(byTime))
	for k := range byTime {
		keys = append(keys, k)
	}
	// Numeric order by hour then minute; zero-padded keys would sort
	// the same lexicographically, but unpadded input times must not
	// end up misplaced.
	sort.Slice(keys, func(i, j int) bool {
		hi, mi, _ := ParseClock(keys[i])
		hj, mj, _ := ParseClock(keys[j])
		if hi != hj {
			return hi < hj
		}
		return mi < mj
	})

	plan := DayPlan{
		Date:         dateOnly(date).Format("2006-01-02"),
		GroupsByHour: make([]HourGroup, 0, len(keys)),
	}
	for _, k := range keys {
		plan.GroupsByHour = append(plan.GroupsByHour, HourGroup{Hour: k, Medications: byTime[k]})
		plan.TotalMedications += len(byTime[k])
	}
	return plan
}
