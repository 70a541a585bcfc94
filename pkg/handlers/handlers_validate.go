package handlers

import (
	"errors"
	"net/http"

	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateSlot re-checks a chosen start time against the freelancer's
// current calendar, for clients holding a stale availability list
func (h *Handler) ValidateSlot(c *gin.Context) {
	var req models.ValidateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	start, err := models.ParseScheduledAt(req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	err = h.Bookings.Check(c.Request.Context(), req.ServiceID, start, req.AppointmentID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"scheduled_at": start.Format(models.DateTimeLayout),
		})
	case errors.Is(err, booking.ErrSlotTaken), errors.Is(err, booking.ErrOutsideWorkingHours):
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
	default:
		h.respondError(c, err)
	}
}
