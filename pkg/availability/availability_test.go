package availability

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func day() time.Time {
	return time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC)
}

func at(hour, minute int) time.Time {
	d := day()
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func startsOf(slots []Slot) []string {
	return Labels(slots, "15:04")
}

func contains(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

func TestComputeSlots_EmptyDay(t *testing.T) {
	slots, err := ComputeSlots(day(), 60, nil, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00"}
	if got := startsOf(slots); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestComputeSlots_LastSlotEndsAtClose(t *testing.T) {
	slots, err := ComputeSlots(day(), 45, nil, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := slots[len(slots)-1]
	if !last.Start.Equal(at(13, 15)) {
		t.Errorf("Expected last slot at 13:15, got %s", last.Start.Format("15:04"))
	}
	if !last.End.Equal(at(14, 0)) {
		t.Errorf("Expected last slot to end at 14:00, got %s", last.End.Format("15:04"))
	}
}

func TestComputeSlots_BackToBack(t *testing.T) {
	existing := []Booking{{Start: at(9, 0), Duration: 30}}

	slots, err := ComputeSlots(day(), 30, existing, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labels := startsOf(slots)
	if !contains(labels, "09:30") {
		t.Errorf("Expected 09:30 to be offered right after the 09:00 booking, got %v", labels)
	}
	if !contains(labels, "08:30") {
		t.Errorf("Expected 08:30 to be offered right before the 09:00 booking, got %v", labels)
	}
	for _, blocked := range []string{"08:45", "09:00", "09:15"} {
		if contains(labels, blocked) {
			t.Errorf("Expected %s to be excluded as overlapping, got %v", blocked, labels)
		}
	}
}

func TestComputeSlots_ShortDurationStep(t *testing.T) {
	slots, err := ComputeSlots(day(), 10, nil, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labels := startsOf(slots)
	want := []string{"08:00", "08:10", "08:20", "08:30", "08:40", "08:50", "09:00"}
	if !reflect.DeepEqual(labels[:len(want)], want) {
		t.Errorf("Expected prefix %v, got %v", want, labels[:len(want)])
	}
	if labels[len(labels)-1] != "13:50" {
		t.Errorf("Expected last slot 13:50, got %s", labels[len(labels)-1])
	}
	if len(labels) != 36 {
		t.Errorf("Expected 36 slots, got %d", len(labels))
	}
}

func TestComputeSlots_LongDurationUsesCappedStep(t *testing.T) {
	slots, err := ComputeSlots(day(), 90, nil, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labels := startsOf(slots)
	if labels[0] != "08:00" || labels[1] != "08:15" {
		t.Errorf("Expected 15 minute steps, got %v", labels[:2])
	}
	if labels[len(labels)-1] != "12:30" {
		t.Errorf("Expected last slot 12:30, got %s", labels[len(labels)-1])
	}
}

func TestComputeSlots_RespectsOtherServiceDurations(t *testing.T) {
	existing := []Booking{
		{Start: at(10, 0), Duration: 90},
		{Start: at(12, 0), Duration: 15},
	}

	slots, err := ComputeSlots(day(), 30, existing, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range slots {
		for _, b := range existing {
			if Overlaps(s.Start, s.End, b.Start, b.End()) {
				t.Errorf("Slot %s overlaps booking at %s", s.Start.Format("15:04"), b.Start.Format("15:04"))
			}
		}
		if s.End.After(at(14, 0)) {
			t.Errorf("Slot %s ends after working hours", s.Start.Format("15:04"))
		}
	}

	labels := startsOf(slots)
	if !contains(labels, "11:30") || !contains(labels, "12:15") {
		t.Errorf("Expected 11:30 and 12:15 to be free, got %v", labels)
	}
}

func TestComputeSlots_Deterministic(t *testing.T) {
	existing := []Booking{{Start: at(11, 0), Duration: 45}}

	first, _ := ComputeSlots(day(), 25, existing, DefaultPolicy)
	second, _ := ComputeSlots(day(), 25, existing, DefaultPolicy)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output for identical input")
	}
	for i := 1; i < len(first); i++ {
		if !first[i-1].Start.Before(first[i].Start) {
			t.Fatalf("Expected ascending order at index %d", i)
		}
	}
}

func TestComputeSlots_ZeroDate(t *testing.T) {
	slots, err := ComputeSlots(time.Time{}, 30, nil, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Expected no slots for a missing date, got %d", len(slots))
	}
}

func TestComputeSlots_InvalidInput(t *testing.T) {
	if _, err := ComputeSlots(day(), 0, nil, DefaultPolicy); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Expected ErrInvalidDuration for zero duration, got %v", err)
	}
	if _, err := ComputeSlots(day(), -15, nil, DefaultPolicy); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Expected ErrInvalidDuration for negative duration, got %v", err)
	}
	if _, err := ComputeSlots(day(), 30, nil, Policy{StartHour: 14, EndHour: 8}); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("Expected ErrInvalidPolicy, got %v", err)
	}
}

func TestComputeSlots_IgnoresTimeOfDayOnDate(t *testing.T) {
	withClock := time.Date(2030, time.March, 4, 17, 42, 9, 0, time.UTC)

	a, _ := ComputeSlots(withClock, 60, nil, DefaultPolicy)
	b, _ := ComputeSlots(day(), 60, nil, DefaultPolicy)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Expected time of day on the input date to be ignored")
	}
}

func TestComputeSlots_DurationLongerThanDay(t *testing.T) {
	slots, err := ComputeSlots(day(), 7*60, nil, DefaultPolicy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Expected no slots when the service is longer than working hours, got %d", len(slots))
	}
}

func TestPolicyContains(t *testing.T) {
	if !DefaultPolicy.Contains(at(13, 0), 60) {
		t.Errorf("Expected 13:00 + 60m to fit")
	}
	if DefaultPolicy.Contains(at(13, 30), 60) {
		t.Errorf("Expected 13:30 + 60m to exceed working hours")
	}
	if DefaultPolicy.Contains(at(7, 45), 30) {
		t.Errorf("Expected 07:45 to be before opening")
	}
}

func TestLabels12Hour(t *testing.T) {
	slots := []Slot{{Start: at(8, 0)}, {Start: at(12, 30)}, {Start: at(13, 15)}}
	want := []string{"08:00 AM", "12:30 PM", "01:15 PM"}
	if got := Labels(slots, "03:04 PM"); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
