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
	"github.com/avelarde/medtrack/internal/model"
	"github.com/avelarde/medtrack/internal/queue"
	"github.com/avelarde/medtrack/internal/repository"
	"github.com/avelarde/medtrack/internal/schedule"
	queue_publisher "github.com/avelarde/medtrack/internal/service"
)

// MedicationHandler exposes medication CRUD plus the daily dose plan.
type MedicationHandler struct {
	Meds *repository.MedicationRepo
}

func NewMedicationHandler(m *repository.MedicationRepo) *MedicationHandler {
	return &MedicationHandler{Meds: m}
}

// ----- DTOs -----

type medicationReq struct {
	Name          string `json:"name"`
	DoseMg        int    `json:"dose_mg"`
	StartDate     string `json:"start_date"` // YYYY-MM-DD
	StartTime     string `json:"start_time"` // HH:mm
	EndDate       string `json:"end_date"`   // YYYY-MM-DD
	IntervalHours int    `json:"interval_hours"`
	Color         string `json:"color"`
}

type medicationResp struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	DoseMg        int    `json:"dose_mg"`
	StartDate     string `json:"start_date,omitempty"`
	StartTime     string `json:"start_time"`
	EndDate       string `json:"end_date,omitempty"`
	IntervalHours int    `json:"interval_hours"`
	Color         string `json:"color"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toMedicationResp(m model.Medication) medicationResp {
	resp := medicationResp{
		ID:            m.ID,
		Name:          m.Name,
		DoseMg:        m.DoseMg,
		StartTime:     m.StartTime,
		IntervalHours: m.IntervalHours,
		Color:         m.Color,
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if m.StartDate != nil {
		resp.StartDate = m.StartDate.Format("2006-01-02")
	}
	if m.EndDate != nil {
		resp.EndDate = m.EndDate.Format("2006-01-02")
	}
	return resp
}

// validate checks a request body and converts it into a Medication.
// The returned string is a client-facing message, empty when valid.
func (req medicationReq) validate() (model.Medication, string) {
	var m model.Medication
	m.Name = strings.TrimSpace(req.Name)
	if m.Name == "" {
		return m, "name required"
	}
	if req.DoseMg <= 0 {
		return m, "dose_mg must be positive"
	}
	if req.IntervalHours < 1 {
		return m, "interval_hours must be at least 1"
	}
	clock, err := normalizeClock(req.StartTime)
	if err != nil {
		return m, "start_time must be HH:mm"
	}
	start, err := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	if err != nil {
		return m, "start_date must be YYYY-MM-DD"
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, time.UTC)
	if err != nil {
		return m, "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return m, "end_date must not precede start_date"
	}
	m.DoseMg = req.DoseMg
	m.StartDate = &start
	m.StartTime = clock
	m.EndDate = &end
	m.IntervalHours = req.IntervalHours
	m.Color = strings.TrimSpace(req.Color)
	return m, ""
}

// publishChange emits a medication.changed event without blocking the
// request; publish failures only cost the notification.
func publishChange(m model.Medication, change string) {
	ev := queue.MedicationChangedEvent{
		MedicationID:  m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Change:        change,
		StartTime:     m.StartTime,
		IntervalHours: m.IntervalHours,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if m.StartDate != nil {
		ev.StartDate = m.StartDate.Format("2006-01-02")
	}
	if m.EndDate != nil {
		ev.EndDate = m.EndDate.Format("2006-01-02")
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishMedicationChanged(ctx, ev)
	}()
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// List returns every medication of the authenticated user.
func (h *MedicationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meds, err := h.Meds.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]medicationResp, 0, len(meds))
	for _, m := range meds {
		out = append(out, toMedicationResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single medication owned by the caller.
func (h *MedicationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Meds.GetByIDForUser(ctx, id, middleware.UserID(c))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toMedicationResp(m))
}

// Create registers a new medication schedule for the caller.
func (h *MedicationHandler) Create(c echo.Context) error {
	var req medicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m.UserID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Meds.Create(ctx, &m); err != nil {
		if err == repository.ErrNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "medication name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	publishChange(m, "created")
	return c.JSON(http.StatusCreated, toMedicationResp(m))
}

// Update replaces the mutable fields of a medication. When the change
// touches timing fields, the medication's intake records are cleared
// together with the update.
func (h *MedicationHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req medicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m.ID = id
	m.UserID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invalidated, err := h.Meds.Update(ctx, &m)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		case repository.ErrNameExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "medication name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	change := "updated"
	if invalidated {
		change = "schedule_changed"
	}
	publishChange(m, change)

	stored, err := h.Meds.GetByIDForUser(ctx, id, m.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"medication":      toMedicationResp(stored),
		"records_cleared": invalidated,
	})
}

// Delete removes a medication and its intake records.
func (h *MedicationHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Snapshot before the delete so the event still has the name.
	m, err := h.Meds.GetByIDForUser(ctx, id, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Meds.Delete(ctx, id, uid); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "medication not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	publishChange(m, "deleted")
	return c.NoContent(http.StatusNoContent)
}

// ScheduleByDate computes the dose plan for one calendar day: every
// medication active on the date, expanded into its occurrences and
// grouped by clock time.
func (h *MedicationHandler) ScheduleByDate(c echo.Context) error {
	date, err := time.ParseInLocation("2006-01-02", c.Param("date"), time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meds, err := h.Meds.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, schedule.OccurrencesForDate(meds, date))
}
