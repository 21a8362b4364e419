package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelarde/medtrack/internal/middleware"
	"github.com/avelarde/medtrack/internal/repository"
	"github.com/avelarde/medtrack/internal/schedule"
)

// ConsumptionHandler exposes the intake ledger: recording whether a
// dose was taken and reading the state back per day or per occurrence.
type ConsumptionHandler struct {
	Meds    *repository.MedicationRepo
	Records *repository.ConsumptionRepo
}

func NewConsumptionHandler(m *repository.MedicationRepo, r *repository.ConsumptionRepo) *ConsumptionHandler {
	return &ConsumptionHandler{Meds: m, Records: r}
}

type recordReq struct {
	MedicationID uint64 `json:"medication_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:mm
	Consumed     bool   `json:"consumed"`
}

// normalizeClock zero-pads a valid clock string so "9:05" and "09:05"
// address the same ledger row.
func normalizeClock(s string) (string, error) {
	hour, min, err := schedule.ParseClock(s)
	if err != nil {
		return "", err
	}
	return time.Date(0, 1, 1, hour, min, 0, 0, time.UTC).Format("15:04"), nil
}

// Record writes the consumption state for one dose occurrence. The
// same key can be written repeatedly; the latest consumed flag wins
// and the original created_at is kept.
func (h *ConsumptionHandler) Record(c echo.Context) error {
	var req recordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MedicationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "medication_id required"})
	}
	if _, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	clock, err := normalizeClock(req.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:mm"})
	}
	uid := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Ownership gate: a foreign or unknown medication reads as absent.
	med, err := h.Meds.GetByIDForUser(ctx, req.MedicationID, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	rec, err := h.Records.Upsert(ctx, uid, req.MedicationID, req.Date, clock, req.Consumed)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":              rec.ID,
		"medication_id":   rec.MedicationID,
		"medication_name": med.Name,
		"date":            rec.Date,
		"time":            rec.Time,
		"consumed":        rec.Consumed,
		"created_at":      rec.CreatedAt,
	})
}

// ListByDate returns every ledger row of the caller for one day.
func (h *ConsumptionHandler) ListByDate(c echo.Context) error {
	date := c.Param("date")
	if _, err := time.ParseInLocation("2006-01-02", date, time.UTC); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Records.ListByUserAndDate(ctx, middleware.UserID(c), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Get looks up a single occurrence key
// (?medication_id=&date=&time=). A missing row is a 404, which clients
// must treat differently from consumed=false: never recorded versus
// recorded as skipped.
func (h *ConsumptionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.QueryParam("medication_id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "medication_id required"})
	}
	date := c.QueryParam("date")
	if _, err := time.ParseInLocation("2006-01-02", date, time.UTC); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	clock, err := normalizeClock(strings.TrimSpace(c.QueryParam("time")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:mm"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Records.GetByKey(ctx, middleware.UserID(c), id, date, clock)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no record for this occurrence"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, d)
}
