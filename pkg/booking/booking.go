package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/availability"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("requested time overlaps an existing appointment")
	ErrOutsideWorkingHours = errors.New("requested time is outside working hours")
	ErrDurationConflict    = errors.New("new duration would clash with booked appointments")
)

// Service is the authoritative appointment store. All writes re-check the
// freelancer's calendar inside a transaction.
type Service struct {
	DB     *gorm.DB
	Policy availability.Policy
	Log    *zap.Logger
	Now    func() time.Time
}

// NewService creates a booking service
func NewService(db *gorm.DB, policy availability.Policy, log *zap.Logger) *Service {
	return &Service{
		DB:     db,
		Policy: policy,
		Log:    log,
		Now:    time.Now,
	}
}

// BookingRequest describes a new appointment
type BookingRequest struct {
	ClientID  uint
	ServiceID uint
	Start     time.Time
}

// RescheduleRequest holds the fields of an appointment that may change
type RescheduleRequest struct {
	ServiceID *uint
	Start     *time.Time
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetService loads a service by ID
func (s *Service) GetService(ctx context.Context, serviceID uint) (*database.Service, error) {
	return loadService(s.DB.WithContext(ctx), serviceID)
}

// FreelancerBookings returns the snapshot of a freelancer's appointments from
// the day before day through the day after, each with its own service duration
func (s *Service) FreelancerBookings(ctx context.Context, freelancerID uint, day time.Time) ([]availability.Booking, error) {
	return freelancerBookings(s.DB.WithContext(ctx), freelancerID, day, 0)
}

// Availability computes the bookable slots of a service on day
func (s *Service) Availability(ctx context.Context, serviceID uint, day time.Time) (*database.Service, []availability.Slot, error) {
	db := s.DB.WithContext(ctx)

	svc, err := loadService(db, serviceID)
	if err != nil {
		return nil, nil, err
	}
	if day.IsZero() {
		return svc, nil, nil
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	existing, err := freelancerBookings(db, svc.UserID, day, 0)
	if err != nil {
		return nil, nil, err
	}

	slots, err := availability.ComputeSlots(day, svc.Duration, existing, s.Policy)
	if err != nil {
		return nil, nil, err
	}

	s.Log.Debug("availability computed",
		zap.Uint("service_id", serviceID),
		zap.String("date", day.Format("2006-01-02")),
		zap.Int("existing", len(existing)),
		zap.Int("slots", len(slots)),
	)
	return svc, slots, nil
}

// Check re-validates a chosen start time against working hours and the
// freelancer's current appointments. excludeID skips one appointment.
func (s *Service) Check(ctx context.Context, serviceID uint, start time.Time, excludeID uint) error {
	db := s.DB.WithContext(ctx)

	svc, err := loadService(db, serviceID)
	if err != nil {
		return err
	}
	return s.validate(db, svc, start, excludeID)
}

// Book creates an appointment after checking the slot is still free
func (s *Service) Book(ctx context.Context, req BookingRequest) (*database.Appointment, error) {
	var appt *database.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.book(tx, req)
		if err != nil {
			return err
		}
		appt = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("appointment booked",
		zap.Uint("appointment_id", appt.ID),
		zap.Uint("client_id", appt.ClientID),
		zap.Uint("service_id", appt.ServiceID),
		zap.Time("scheduled_at", appt.ScheduledAt),
	)
	return appt, nil
}

// Reschedule moves an appointment to another start time or service
func (s *Service) Reschedule(ctx context.Context, appointmentID uint, req RescheduleRequest) (*database.Appointment, error) {
	var appt database.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotFound
			}
			return err
		}

		if req.ServiceID != nil {
			appt.ServiceID = *req.ServiceID
		}
		if req.Start != nil {
			appt.ScheduledAt = req.Start.UTC()
		}

		svc, err := loadService(tx, appt.ServiceID)
		if err != nil {
			return err
		}
		if err := lockFreelancer(tx, svc.UserID); err != nil {
			return err
		}
		if err := s.validate(tx, svc, appt.ScheduledAt, appt.ID); err != nil {
			return err
		}
		return tx.Model(&appt).Updates(map[string]any{
			"service_id":   appt.ServiceID,
			"scheduled_at": appt.ScheduledAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("appointment rescheduled",
		zap.Uint("appointment_id", appt.ID),
		zap.Time("scheduled_at", appt.ScheduledAt),
	)
	return &appt, nil
}

// ChangeDuration sets a service's duration. A longer duration is refused when
// any upcoming appointment of the service would then leave working hours or
// run into another appointment of the freelancer.
func (s *Service) ChangeDuration(ctx context.Context, serviceID uint, duration int) error {
	if duration <= 0 {
		return availability.ErrInvalidDuration
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		svc, err := loadService(tx, serviceID)
		if err != nil {
			return err
		}
		if err := lockFreelancer(tx, svc.UserID); err != nil {
			return err
		}

		if duration > svc.Duration {
			var upcoming []database.Appointment
			err := tx.Where("service_id = ? AND scheduled_at >= ?", svc.ID, StartOfDay(s.Now().UTC())).
				Order("scheduled_at").
				Find(&upcoming).Error
			if err != nil {
				return fmt.Errorf("load service appointments: %w", err)
			}

			for _, a := range upcoming {
				if !s.Policy.Contains(a.ScheduledAt, duration) {
					return ErrDurationConflict
				}
				others, err := freelancerAppointments(tx, svc.UserID, a.ScheduledAt, a.ID)
				if err != nil {
					return err
				}
				existing := make([]availability.Booking, 0, len(others))
				for _, o := range others {
					d := o.Service.Duration
					if o.ServiceID == svc.ID {
						d = duration
					}
					existing = append(existing, availability.Booking{Start: o.ScheduledAt, Duration: d})
				}
				if availability.Conflicts(a.ScheduledAt, duration, existing) {
					return ErrDurationConflict
				}
			}
		}

		if err := tx.Model(svc).Update("duration", duration).Error; err != nil {
			return err
		}
		s.Log.Info("service duration changed",
			zap.Uint("service_id", svc.ID),
			zap.Int("from", svc.Duration),
			zap.Int("to", duration),
		)
		return nil
	})
}

func (s *Service) book(tx *gorm.DB, req BookingRequest) (*database.Appointment, error) {
	svc, err := loadService(tx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := lockFreelancer(tx, svc.UserID); err != nil {
		return nil, err
	}
	if err := s.validate(tx, svc, req.Start, 0); err != nil {
		return nil, err
	}

	appt := &database.Appointment{
		ClientID:    req.ClientID,
		ServiceID:   req.ServiceID,
		ScheduledAt: req.Start.UTC(),
	}
	if err := tx.Create(appt).Error; err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) validate(tx *gorm.DB, svc *database.Service, start time.Time, excludeID uint) error {
	start = start.UTC()
	if svc.Duration <= 0 {
		return availability.ErrInvalidDuration
	}
	if !s.Policy.Contains(start, svc.Duration) {
		return ErrOutsideWorkingHours
	}

	existing, err := freelancerBookings(tx, svc.UserID, start, excludeID)
	if err != nil {
		return err
	}
	if availability.Conflicts(start, svc.Duration, existing) {
		return ErrSlotTaken
	}
	return nil
}

func loadService(tx *gorm.DB, serviceID uint) (*database.Service, error) {
	var svc database.Service
	if err := tx.First(&svc, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// lockFreelancer serialises writers on one freelancer's calendar.
// SQLite ignores the locking clause; its writers are serialised anyway.
func lockFreelancer(tx *gorm.DB, freelancerID uint) error {
	var user database.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&user, freelancerID).Error
	if err != nil {
		return fmt.Errorf("lock freelancer %d: %w", freelancerID, err)
	}
	return nil
}

func freelancerBookings(tx *gorm.DB, freelancerID uint, day time.Time, excludeID uint) ([]availability.Booking, error) {
	appts, err := freelancerAppointments(tx, freelancerID, day, excludeID)
	if err != nil {
		return nil, err
	}

	bookings := make([]availability.Booking, 0, len(appts))
	for _, a := range appts {
		bookings = append(bookings, availability.Booking{Start: a.ScheduledAt, Duration: a.Service.Duration})
	}
	return bookings, nil
}

// freelancerAppointments loads the freelancer's appointments from the day
// before day through the day after, each with its service preloaded
func freelancerAppointments(tx *gorm.DB, freelancerID uint, day time.Time, excludeID uint) ([]database.Appointment, error) {
	from := StartOfDay(day.UTC()).AddDate(0, 0, -1)
	to := from.AddDate(0, 0, 3)

	q := tx.Model(&database.Appointment{}).
		Select("appointments.*").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("services.user_id = ?", freelancerID).
		Where("appointments.scheduled_at >= ? AND appointments.scheduled_at < ?", from, to).
		Preload("Service")
	if excludeID != 0 {
		q = q.Where("appointments.id <> ?", excludeID)
	}

	var appts []database.Appointment
	if err := q.Order("appointments.scheduled_at").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("load freelancer appointments: %w", err)
	}

	loaded := appts[:0]
	for _, a := range appts {
		if a.Service != nil {
			loaded = append(loaded, a)
		}
	}
	return loaded, nil
}
