package handlers

import (
	"errors"
	"net/http"

	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateAppointment books a slot for the caller
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req models.AppointmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ClientID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only create appointments for yourself"})
		return
	}

	start, err := models.ParseScheduledAt(req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.Bookings.Book(c.Request.Context(), booking.BookingRequest{
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		Start:     start,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment created successfully",
		"appointment": models.NewAppointmentResponse(appt),
	})
}

// ListAppointments returns every appointment for admins, otherwise the
// caller's own bookings and the bookings of the caller's services
func (h *Handler) ListAppointments(c *gin.Context) {
	user := currentUser(c)

	q := h.DB.Preload("Service").Order("appointments.scheduled_at")
	if !user.IsAdmin {
		q = q.Select("appointments.*").
			Joins("JOIN services ON services.id = appointments.service_id").
			Where("appointments.client_id = ? OR services.user_id = ?", user.ID, user.ID)
	}

	var appts []database.Appointment
	if err := q.Find(&appts).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewAppointmentList(appts))
}

// GetAppointment returns one appointment visible to the caller
func (h *Handler) GetAppointment(c *gin.Context) {
	appt, ok := h.loadAppointment(c)
	if !ok {
		return
	}
	if !canView(currentUser(c), appt) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot view this appointment"})
		return
	}
	c.JSON(http.StatusOK, models.NewAppointmentResponse(appt))
}

// UpdateAppointment reschedules an appointment, re-checking the calendar
func (h *Handler) UpdateAppointment(c *gin.Context) {
	appt, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if appt.ClientID != user.ID && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own appointments"})
		return
	}

	var req models.AppointmentUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	change := booking.RescheduleRequest{ServiceID: req.ServiceID}
	if req.ScheduledAt != nil {
		start, err := models.ParseScheduledAt(*req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		change.Start = &start
	}

	updated, err := h.Bookings.Reschedule(c.Request.Context(), appt.ID, change)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment updated successfully",
		"appointment": models.NewAppointmentResponse(updated),
	})
}

// DeleteAppointment cancels one of the caller's appointments
func (h *Handler) DeleteAppointment(c *gin.Context) {
	appt, ok := h.loadAppointment(c)
	if !ok {
		return
	}
	if appt.ClientID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own appointments"})
		return
	}

	if err := h.DB.Delete(&database.Appointment{}, appt.ID).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

// ListFreelancerAppointments returns the schedule of one freelancer, each
// appointment carrying its service duration
func (h *Handler) ListFreelancerAppointments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var appts []database.Appointment
	err := h.DB.Preload("Service").
		Select("appointments.*").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("services.user_id = ?", id).
		Order("appointments.scheduled_at").
		Find(&appts).Error
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewAppointmentList(appts))
}

// ListClientAppointments returns the caller's own appointments
func (h *Handler) ListClientAppointments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own appointments"})
		return
	}

	var appts []database.Appointment
	if err := h.DB.Preload("Service").Where("client_id = ?", id).Order("scheduled_at").Find(&appts).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewAppointmentList(appts))
}

func (h *Handler) loadAppointment(c *gin.Context) (*database.Appointment, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var appt database.Appointment
	if err := h.DB.Preload("Service").First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		} else {
			h.respondError(c, err)
		}
		return nil, false
	}
	return &appt, true
}

func canView(user *database.User, appt *database.Appointment) bool {
	if user.IsAdmin || appt.ClientID == user.ID {
		return true
	}
	return appt.Service != nil && appt.Service.UserID == user.ID
}
