package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPendingNotFound  = errors.New("pending booking not found")
	ErrPendingExpired   = errors.New("pending booking expired")
	ErrPendingFailed    = errors.New("pending booking could not be confirmed")
	ErrPendingForbidden = errors.New("pending booking belongs to another client")
)

// CreatePending records a chosen slot before the client is sent to checkout.
// The slot is checked up front so obviously taken slots fail early.
func (s *Service) CreatePending(ctx context.Context, req BookingRequest, ttl time.Duration) (*database.PendingBooking, error) {
	if err := s.Check(ctx, req.ServiceID, req.Start, 0); err != nil {
		return nil, err
	}

	pending := &database.PendingBooking{
		ID:          uuid.NewString(),
		ClientID:    req.ClientID,
		ServiceID:   req.ServiceID,
		ScheduledAt: req.Start.UTC(),
		Status:      database.PendingStatusPending,
		ExpiresAt:   s.Now().UTC().Add(ttl),
	}
	if err := s.DB.WithContext(ctx).Create(pending).Error; err != nil {
		return nil, fmt.Errorf("create pending booking: %w", err)
	}
	return pending, nil
}

// AttachSession links a checkout session to a pending booking
func (s *Service) AttachSession(ctx context.Context, pendingID, sessionID string) error {
	res := s.DB.WithContext(ctx).Model(&database.PendingBooking{}).
		Where("id = ?", pendingID).
		Update("session_id", sessionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// DiscardPending removes a pending booking whose checkout never started
func (s *Service) DiscardPending(ctx context.Context, pendingID string) error {
	return s.DB.WithContext(ctx).Delete(&database.PendingBooking{}, "id = ?", pendingID).Error
}

// ConfirmPending turns the pending booking behind a paid checkout session
// into an appointment. Confirming twice returns the same appointment.
func (s *Service) ConfirmPending(ctx context.Context, sessionID string, clientID uint) (*database.Appointment, error) {
	var appt *database.Appointment
	var outcome error

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending database.PendingBooking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionID).
			First(&pending).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPendingNotFound
			}
			return err
		}

		if pending.ClientID != clientID {
			return ErrPendingForbidden
		}

		switch pending.Status {
		case database.PendingStatusConfirmed:
			var existing database.Appointment
			if pending.AppointmentID == nil {
				return ErrAppointmentNotFound
			}
			if err := tx.First(&existing, *pending.AppointmentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAppointmentNotFound
				}
				return err
			}
			appt = &existing
			return nil
		case database.PendingStatusExpired:
			return ErrPendingExpired
		case database.PendingStatusFailed:
			return ErrPendingFailed
		}

		if s.Now().UTC().After(pending.ExpiresAt) {
			outcome = ErrPendingExpired
			return tx.Model(&pending).Update("status", database.PendingStatusExpired).Error
		}

		created, err := s.book(tx, BookingRequest{
			ClientID:  pending.ClientID,
			ServiceID: pending.ServiceID,
			Start:     pending.ScheduledAt,
		})
		if errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrOutsideWorkingHours) || errors.Is(err, ErrServiceNotFound) {
			outcome = err
			return tx.Model(&pending).Update("status", database.PendingStatusFailed).Error
		}
		if err != nil {
			return err
		}

		appt = created
		return tx.Model(&pending).Updates(map[string]any{
			"status":         database.PendingStatusConfirmed,
			"appointment_id": created.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		s.Log.Warn("pending booking not confirmed",
			zap.String("session_id", sessionID),
			zap.Error(outcome),
		)
		return nil, outcome
	}

	s.Log.Info("pending booking confirmed",
		zap.String("session_id", sessionID),
		zap.Uint("appointment_id", appt.ID),
	)
	return appt, nil
}

// PruneExpired marks pending bookings past their expiry as expired
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&database.PendingBooking{}).
		Where("status = ? AND expires_at < ?", database.PendingStatusPending, s.Now().UTC()).
		Update("status", database.PendingStatusExpired)
	return res.RowsAffected, res.Error
}
