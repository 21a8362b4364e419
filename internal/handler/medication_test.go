package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReq() medicationReq {
	return medicationReq{
		Name:          "Amoxicillin",
		DoseMg:        500,
		StartDate:     "2026-02-02",
		StartTime:     "07:00",
		EndDate:       "2026-02-10",
		IntervalHours: 8,
		Color:         "#1d4ed8",
	}
}

func TestMedicationReqValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, msg := validReq().validate()
		require.Empty(t, msg)
		assert.Equal(t, "Amoxicillin", m.Name)
		assert.Equal(t, 500, m.DoseMg)
		assert.Equal(t, 8, m.IntervalHours)
		require.NotNil(t, m.StartDate)
		require.NotNil(t, m.EndDate)
		assert.Equal(t, "2026-02-02", m.StartDate.Format("2006-01-02"))
		assert.Equal(t, "2026-02-10", m.EndDate.Format("2006-01-02"))
	})

	t.Run("name trimmed", func(t *testing.T) {
		req := validReq()
		req.Name = "  Ibuprofen  "
		m, msg := req.validate()
		require.Empty(t, msg)
		assert.Equal(t, "Ibuprofen", m.Name)
	})

	cases := []struct {
		name   string
		mutate func(*medicationReq)
		msg    string
	}{
		{"empty name", func(r *medicationReq) { r.Name = "   " }, "name required"},
		{"zero dose", func(r *medicationReq) { r.DoseMg = 0 }, "dose_mg must be positive"},
		{"negative dose", func(r *medicationReq) { r.DoseMg = -10 }, "dose_mg must be positive"},
		{"zero interval", func(r *medicationReq) { r.IntervalHours = 0 }, "interval_hours must be at least 1"},
		{"bad clock", func(r *medicationReq) { r.StartTime = "25:00" }, "start_time must be HH:mm"},
		{"clock missing minutes", func(r *medicationReq) { r.StartTime = "8" }, "start_time must be HH:mm"},
		{"bad start date", func(r *medicationReq) { r.StartDate = "02/02/2026" }, "start_date must be YYYY-MM-DD"},
		{"bad end date", func(r *medicationReq) { r.EndDate = "" }, "end_date must be YYYY-MM-DD"},
		{"end before start", func(r *medicationReq) { r.EndDate = "2026-02-01" }, "end_date must not precede start_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validReq()
			tc.mutate(&req)
			_, msg := req.validate()
			assert.Equal(t, tc.msg, msg)
		})
	}

	t.Run("single day range allowed", func(t *testing.T) {
		req := validReq()
		req.EndDate = req.StartDate
		_, msg := req.validate()
		assert.Empty(t, msg)
	})
}

func TestNormalizeClock(t *testing.T) {
	got, err := normalizeClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	got, err = normalizeClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, "23:59", got)

	_, err = normalizeClock("24:00")
	assert.Error(t, err)
	_, err = normalizeClock("0900")
	assert.Error(t, err)
}
