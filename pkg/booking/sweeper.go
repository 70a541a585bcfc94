package booking

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically expires abandoned pending bookings
type Sweeper struct {
	cron     *cron.Cron
	bookings *Service
	log      *zap.Logger
}

// NewSweeper creates a sweeper for the given booking service
func NewSweeper(bookings *Service, log *zap.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		bookings: bookings,
		log:      log,
	}
}

// Start schedules the sweep with a cron spec such as "@every 5m"
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("pending booking sweeper started", zap.String("spec", spec))
	return nil
}

// Stop halts the schedule and returns a context done once a running sweep finishes
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep runs one expiry pass
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.bookings.PruneExpired(ctx)
	if err != nil {
		s.log.Error("pending booking sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("expired pending bookings", zap.Int64("count", n))
	}
}
