package models

import (
	"fmt"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/database"
)

// Wire formats for naive local times
const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
	SlotLabel      = "03:04 PM"
)

// ParseScheduledAt parses a naive "YYYY-MM-DDTHH:MM:SS" start time.
// A trailing seconds-less form is also accepted.
func ParseScheduledAt(s string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, s)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse("2006-01-02T15:04", s); err2 == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("scheduled_at must look like %s: %w", DateTimeLayout, err)
}

// ParseDate parses a "YYYY-MM-DD" day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like %s: %w", DateLayout, err)
	}
	return t, nil
}

// RegisterInput is the body of POST /auth/register
type RegisterInput struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	IsFreelancer bool   `json:"is_freelancer"`
}

// LoginInput is the body of POST /auth/login
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after register and login
type AuthResponse struct {
	Message      string `json:"message"`
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	IsFreelancer bool   `json:"is_freelancer"`
	IsAdmin      bool   `json:"is_admin"`
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
}

// ServiceInput is the body of POST /services
type ServiceInput struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
}

// ServiceUpdateInput is the body of PUT /services/:id
type ServiceUpdateInput struct {
	CategoryID  *uint    `json:"category_id"`
	Title       *string  `json:"title" binding:"omitempty,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Duration    *int     `json:"duration" binding:"omitempty,gt=0"`
}

// CategoryInput is the body of POST and PUT /categories
type CategoryInput struct {
	Name string `json:"name" binding:"required,max=100"`
}

// AppointmentInput is the body of POST /appointments and the checkout request
type AppointmentInput struct {
	ClientID    uint   `json:"client_id" binding:"required"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	ScheduledAt string `json:"scheduled_at" binding:"required"`
}

// AppointmentUpdateInput is the body of PUT /appointments/:id
type AppointmentUpdateInput struct {
	ServiceID   *uint   `json:"service_id"`
	ScheduledAt *string `json:"scheduled_at"`
}

// ValidateInput is the body of POST /appointments/validate
type ValidateInput struct {
	ServiceID     uint   `json:"service_id" binding:"required"`
	ScheduledAt   string `json:"scheduled_at" binding:"required"`
	AppointmentID uint   `json:"appointment_id"`
}

// AppointmentResponse renders an appointment with naive times
type AppointmentResponse struct {
	ID          uint   `json:"id"`
	ClientID    uint   `json:"client_id"`
	ServiceID   uint   `json:"service_id"`
	ScheduledAt string `json:"scheduled_at"`
	EndsAt      string `json:"ends_at,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Title       string `json:"title,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// NewAppointmentResponse converts a stored appointment. Service is optional.
func NewAppointmentResponse(a *database.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:          a.ID,
		ClientID:    a.ClientID,
		ServiceID:   a.ServiceID,
		ScheduledAt: a.ScheduledAt.UTC().Format(DateTimeLayout),
		CreatedAt:   a.CreatedAt.Format(DateTimeLayout),
	}
	if a.Service != nil {
		resp.Duration = a.Service.Duration
		resp.Title = a.Service.Title
		resp.EndsAt = a.ScheduledAt.UTC().Add(time.Duration(a.Service.Duration) * time.Minute).Format(DateTimeLayout)
	}
	return resp
}

// NewAppointmentList converts a list of appointments
func NewAppointmentList(appts []database.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, NewAppointmentResponse(&appts[i]))
	}
	return out
}

// SlotResponse is one bookable start time
type SlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// AvailabilityResponse is returned by GET /services/:id/availability
type AvailabilityResponse struct {
	ServiceID uint           `json:"service_id"`
	Date      string         `json:"date"`
	Duration  int            `json:"duration"`
	Slots     []SlotResponse `json:"slots"`
}

// CheckoutResponse is returned by POST /appointments/checkout
type CheckoutResponse struct {
	PendingBookingID string `json:"pending_booking_id"`
	SessionID        string `json:"session_id"`
	URL              string `json:"url"`
	ExpiresAt        string `json:"expires_at"`
}
