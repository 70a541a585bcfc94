package availability

import (
	"errors"
	"time"
)

// MaxStep caps the scanning granularity in minutes
const MaxStep = 15

var (
	ErrInvalidDuration = errors.New("service duration must be greater than zero")
	ErrInvalidPolicy   = errors.New("working hours must satisfy 0 <= start < end <= 23")
)

// Policy is the daily working-hours window in which bookings may be placed
type Policy struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// DefaultPolicy is the window used when none is configured
var DefaultPolicy = Policy{StartHour: 8, EndHour: 14}

// Validate checks the hour bounds of the policy
func (p Policy) Validate() error {
	if p.StartHour < 0 || p.EndHour > 23 || p.StartHour >= p.EndHour {
		return ErrInvalidPolicy
	}
	return nil
}

// Close returns the end of working hours on the given day
func (p Policy) Close(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), p.EndHour, 0, 0, 0, day.Location())
}

// Open returns the start of working hours on the given day
func (p Policy) Open(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), p.StartHour, 0, 0, 0, day.Location())
}

// Contains reports whether an appointment of duration minutes starting at
// start lies entirely inside working hours of its own day
func (p Policy) Contains(start time.Time, duration int) bool {
	if duration <= 0 {
		return false
	}
	end := start.Add(time.Duration(duration) * time.Minute)
	return !start.Before(p.Open(start)) && !end.After(p.Close(start))
}

// Booking is an already-confirmed appointment of the freelancer
type Booking struct {
	Start    time.Time `json:"start"`
	Duration int       `json:"duration"`
}

// End returns the exclusive end of the booking
func (b Booking) End() time.Time {
	return b.Start.Add(time.Duration(b.Duration) * time.Minute)
}

// Slot is a bookable candidate interval
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps checks if two half-open time ranges share an interior point
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Conflicts reports whether a duration-minute appointment at start would
// overlap any of the existing bookings
func Conflicts(start time.Time, duration int, existing []Booking) bool {
	end := start.Add(time.Duration(duration) * time.Minute)
	for _, b := range existing {
		if Overlaps(start, end, b.Start, b.End()) {
			return true
		}
	}
	return false
}

// Step returns the scanning granularity for a service duration
func Step(duration int) int {
	if duration < MaxStep {
		return duration
	}
	return MaxStep
}

// ComputeSlots returns, in ascending order, every start time on date at
// which a duration-minute appointment fits inside the policy window
// without overlapping an existing booking. A zero date yields no slots.
// Times are taken as naive wall-clock values in date's location.
func ComputeSlots(date time.Time, duration int, existing []Booking, policy Policy) ([]Slot, error) {
	if date.IsZero() {
		return nil, nil
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	step := Step(duration)
	closing := policy.Close(date)
	length := time.Duration(duration) * time.Minute

	var slots []Slot
	for hour := policy.StartHour; hour <= policy.EndHour; hour++ {
		maxMinute := 60
		if hour == policy.EndHour {
			maxMinute = 1
		}
		for minute := 0; minute < maxMinute; minute += step {
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
			end := start.Add(length)
			if end.After(closing) {
				continue
			}
			if Conflicts(start, duration, existing) {
				continue
			}
			slots = append(slots, Slot{Start: start, End: end})
		}
	}
	return slots, nil
}

// Labels formats slot starts for display using a time layout such as
// "15:04" or "03:04 PM"
func Labels(slots []Slot, layout string) []string {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Start.Format(layout))
	}
	return labels
}
