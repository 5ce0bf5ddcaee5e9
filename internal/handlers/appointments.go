package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/store"
	"clinic-booking-server/internal/utils"
	"clinic-booking-server/internal/validation"
)

// AppointmentStore is the persistence surface the handlers need. The
// concrete implementation lives in the store package; tests substitute
// a stub.
type AppointmentStore interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, f store.ListFilter) ([]models.Appointment, int64, error)
	Update(ctx context.Context, id string, upd *models.Appointment) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*store.Stats, error)
}

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Store AppointmentStore
	Log   zerolog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(s AppointmentStore, log zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{Store: s, Log: log}
}

// CreateAppointment handles booking a new appointment. The client may
// not choose an id, status, or timestamps; new bookings always start
// out scheduled.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var in validation.AppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	in.Status = ""

	appt, verrs := validation.Appointment(in, time.Now())
	if verrs != nil {
		utils.ValidationFailed(c, verrs)
		return
	}

	if err := h.Store.Create(c.Request.Context(), appt); err != nil {
		h.storeError(c, err)
		return
	}

	h.Log.Info().Str("id", appt.ID).Str("patient", appt.PatientName).Msg("appointment created")
	utils.Created(c, "Appointment created successfully", appt)
}

// GetAppointments handles listing appointments with filtering,
// pagination, and sorting.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	f := store.ListFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Doctor:     c.Query("doctor"),
		Page:       parseIntDefault(c.Query("page"), 1),
		Limit:      parseIntDefault(c.Query("limit"), 10),
		Sort:       sortMode(c.Query("sort")),
	}

	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
			return
		}
		f.EndDate = &t
	}

	appts, total, err := h.Store.List(c.Request.Context(), f)
	if err != nil {
		h.storeError(c, err)
		return
	}

	limit := f.Limit
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))

	utils.Paginated(c, appts, utils.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	})
}

// GetAppointmentByID handles fetching a single appointment by its ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	appt, err := h.Store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	utils.OK(c, appt)
}

// UpdateAppointment handles a full replace of an appointment's mutable
// fields. The same validation applies as on create; the record itself
// is excluded from the slot conflict check.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	var in validation.AppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appt, verrs := validation.Appointment(in, time.Now())
	if verrs != nil {
		utils.ValidationFailed(c, verrs)
		return
	}

	updated, err := h.Store.Update(c.Request.Context(), id, appt)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.Log.Info().Str("id", id).Msg("appointment updated")
	utils.OKWithMessage(c, "Appointment updated successfully", updated)
}

// UpdateStatusRequest represents the request body for a status patch.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateAppointmentStatus handles a status-only patch. Only enum
// membership is checked; any status may move to any other.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	status := models.AppointmentStatus(req.Status)
	if !status.IsValid() {
		utils.ValidationFailed(c, validation.FieldErrors{{Field: "status", Message: "Invalid status value"}})
		return
	}

	appt, err := h.Store.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.Log.Info().Str("id", id).Str("status", req.Status).Msg("appointment status updated")
	utils.OKWithMessage(c, "Appointment status updated successfully", appt)
}

// DeleteAppointment handles permanently removing an appointment.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		h.storeError(c, err)
		return
	}

	h.Log.Info().Str("id", id).Msg("appointment deleted")
	utils.OKWithMessage(c, "Appointment deleted successfully", nil)
}

// GetStats handles the dashboard statistics overview.
func (h *AppointmentHandler) GetStats(c *gin.Context) {
	stats, err := h.Store.Stats(c.Request.Context(), time.Now())
	if err != nil {
		h.storeError(c, err)
		return
	}

	utils.OK(c, stats)
}

// appointmentID validates the :id path parameter, answering 400 itself
// when the value is not a UUID.
func appointmentID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		utils.BadRequest(c, "Invalid appointment ID")
		return "", false
	}
	return id, true
}

func (h *AppointmentHandler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.Is(err, store.ErrSlotConflict):
		utils.Conflict(c, "This time slot is already booked for the selected doctor")
	default:
		h.Log.Error().Err(err).Msg("appointment store error")
		utils.InternalServerError(c, "Database error")
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func sortMode(s string) string {
	switch s {
	case "date_desc", "desc":
		return store.SortDateDesc
	case "recent":
		return store.SortRecent
	default:
		return store.SortDateAsc
	}
}
