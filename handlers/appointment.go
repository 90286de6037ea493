package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gobarber/middleware"
	"gobarber/models"
	"gobarber/services/scheduling"
	"gobarber/services/storage"
)

// AppointmentService is the part of the scheduling engine the HTTP layer uses.
type AppointmentService interface {
	ListAppointments(ctx context.Context, actorID int64, page scheduling.Pagination) ([]models.Appointment, error)
	ListSchedule(ctx context.Context, actorID int64, rawDay string) ([]models.Appointment, error)
	BookAppointment(ctx context.Context, actorID int64, in scheduling.BookingInput) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, actorID, appointmentID int64) (*models.Appointment, error)
	Now() time.Time
}

type AppointmentHandler struct {
	svc   AppointmentService
	files storage.URLResolver
}

func NewAppointmentHandler(svc AppointmentService, files storage.URLResolver) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, files: files}
}

type bookingRequest struct {
	ProviderID int64  `json:"provider_id"`
	Date       string `json:"date"`
}

// ListAppointments handles GET /appointments?limit=&offset=.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	actorID, _ := middleware.UserID(c)

	var page scheduling.Pagination
	var err error
	if raw := c.Query("limit"); raw != "" {
		if page.Limit, err = strconv.Atoi(raw); err != nil {
			respondValidation(c, "limit must be an integer")
			return
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if page.Offset, err = strconv.Atoi(raw); err != nil {
			respondValidation(c, "offset must be an integer")
			return
		}
	}

	appts, err := h.svc.ListAppointments(c.Request.Context(), actorID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAppointments(appts, h.svc.Now(), h.files))
}

// BookAppointment handles POST /appointments.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	actorID, _ := middleware.UserID(c)

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}

	appt, err := h.svc.BookAppointment(c.Request.Context(), actorID, scheduling.BookingInput{
		ProviderID: req.ProviderID,
		Date:       req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointment handles DELETE /appointments/:id.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actorID, _ := middleware.UserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondValidation(c, "appointment id must be an integer")
		return
	}

	if _, err := h.svc.CancelAppointment(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ListSchedule handles GET /schedule?date=.
func (h *AppointmentHandler) ListSchedule(c *gin.Context) {
	actorID, _ := middleware.UserID(c)

	appts, err := h.svc.ListSchedule(c.Request.Context(), actorID, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAppointments(appts, h.svc.Now(), h.files))
}
