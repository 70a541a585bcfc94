package handlers

import (
	"net/http"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// GetAvailability lists the free start times of a service on ?date=YYYY-MM-DD.
// A missing date or a day already past yields no slots; on the current day
// start times already gone by are dropped.
func (h *Handler) GetAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var day time.Time
	date := c.Query("date")
	if date != "" {
		var err error
		if day, err = models.ParseDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if day.Before(h.today()) {
			day = time.Time{}
		}
	}

	// A zero day computes nothing but still resolves the service.
	svc, slots, err := h.Bookings.Availability(c.Request.Context(), id, day)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := models.AvailabilityResponse{
		ServiceID: svc.ID,
		Date:      date,
		Duration:  svc.Duration,
		Slots:     make([]models.SlotResponse, 0, len(slots)),
	}
	now := h.wallClock()
	for _, s := range slots {
		if s.Start.Before(now) {
			continue
		}
		resp.Slots = append(resp.Slots, models.SlotResponse{
			Start: s.Start.Format(models.DateTimeLayout),
			End:   s.End.Format(models.DateTimeLayout),
			Label: s.Start.Format(models.SlotLabel),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// wallClock is the server's current wall-clock time as a naive UTC value,
// matching stored times
func (h *Handler) wallClock() time.Time {
	now := h.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
}

func (h *Handler) today() time.Time {
	return booking.StartOfDay(h.wallClock())
}
