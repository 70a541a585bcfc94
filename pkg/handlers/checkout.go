package handlers

import (
	"errors"
	"net/http"

	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/checkout"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartCheckout holds the chosen slot as a pending booking and opens a
// checkout session for it
func (h *Handler) StartCheckout(c *gin.Context) {
	var req models.AppointmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	if req.ClientID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only book appointments for yourself"})
		return
	}

	start, err := models.ParseScheduledAt(req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	svc, err := h.Bookings.GetService(ctx, req.ServiceID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pending, err := h.Bookings.CreatePending(ctx, booking.BookingRequest{
		ClientID:  user.ID,
		ServiceID: svc.ID,
		Start:     start,
	}, h.Config.PendingTTL())
	if err != nil {
		h.respondError(c, err)
		return
	}

	session, err := h.Checkout.CreateSession(ctx, checkout.SessionRequest{
		PendingID:   pending.ID,
		ClientEmail: user.Email,
		Title:       svc.Title,
		Price:       svc.Price,
		Currency:    h.Config.Currency,
		SuccessURL:  h.Config.CheckoutSuccessURL,
		CancelURL:   h.Config.CheckoutCancelURL,
	})
	if err != nil {
		h.Log.Error("checkout session failed", zap.String("pending_id", pending.ID), zap.Error(err))
		if derr := h.Bookings.DiscardPending(ctx, pending.ID); derr != nil {
			h.Log.Warn("discard pending booking", zap.String("pending_id", pending.ID), zap.Error(derr))
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not start checkout"})
		return
	}

	if err := h.Bookings.AttachSession(ctx, pending.ID, session.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CheckoutResponse{
		PendingBookingID: pending.ID,
		SessionID:        session.ID,
		URL:              session.URL,
		ExpiresAt:        pending.ExpiresAt.Format(models.DateTimeLayout),
	})
}

// CheckoutSuccess confirms the booking behind a paid checkout session.
// Calling it again for the same session returns the same appointment.
func (h *Handler) CheckoutSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	ctx := c.Request.Context()

	session, err := h.Checkout.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, checkout.ErrSessionNotFound) {
			h.respondError(c, err)
			return
		}
		h.Log.Error("checkout session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify checkout"})
		return
	}
	if !session.Paid {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Checkout has not been paid"})
		return
	}

	appt, err := h.Bookings.ConfirmPending(ctx, session.ID, currentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment confirmed",
		"appointment": models.NewAppointmentResponse(appt),
	})
}
