package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelarde/medtrack/internal/repository"
)

// Recording a consumption answers with the joined medication name and
// the normalized zero-padded clock, matching what the GET endpoints
// serve.
func TestRecordResponseCarriesMedicationName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewConsumptionHandler(repository.NewMedicationRepo(db), repository.NewConsumptionRepo(db))

	day := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)

	// Ownership lookup.
	mock.ExpectQuery("SELECT id, user_id, name, dose_mg, start_date, start_time, end_date, interval_hours, color, created_at, updated_at FROM medications").
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "dose_mg", "start_date", "start_time",
			"end_date", "interval_hours", "color", "created_at", "updated_at",
		}).AddRow(2, 1, "amoxicillin", 500, day, "08:00", day, 8, "#3498db", day, day))

	// Upsert: key absent, insert, read back.
	mock.ExpectQuery("SELECT id FROM consumption_records").
		WithArgs(int64(1), int64(2), "2026-02-03", "08:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO consumption_records").
		WithArgs(int64(1), int64(2), "2026-02-03", "08:00", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT id, user_id, medication_id, date, time, consumed, created_at").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "medication_id", "date", "time", "consumed", "created_at"}).
			AddRow(11, 1, 2, day, "08:00", true, int64(1770000000000)))

	e := echo.New()
	body := `{"medication_id":2,"date":"2026-02-03","time":"8:00","consumed":true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/consumptions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))

	require.NoError(t, h.Record(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "amoxicillin", got["medication_name"])
	assert.Equal(t, "08:00", got["time"])
	assert.Equal(t, true, got["consumed"])
	assert.Equal(t, float64(2), got["medication_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
