package models

import (
	"testing"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduledAt(t *testing.T) {
	got, err := ParseScheduledAt("2030-03-04T09:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 9, got.Hour())

	got, err = ParseScheduledAt("2030-03-04T09:30")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Minute())

	_, err = ParseScheduledAt("04/03/2030 09:30")
	assert.Error(t, err)
}

func TestNewAppointmentResponse_PrintsUTCWallClock(t *testing.T) {
	start := time.Date(2030, time.March, 4, 13, 0, 0, 0, time.UTC).In(time.FixedZone("CET", 3600))
	appt := &database.Appointment{
		ID:          1,
		ScheduledAt: start,
		Service:     &database.Service{Title: "Haircut", Duration: 30},
	}

	resp := NewAppointmentResponse(appt)
	assert.Equal(t, "2030-03-04T13:00:00", resp.ScheduledAt)
	assert.Equal(t, "2030-03-04T13:30:00", resp.EndsAt)
	assert.Equal(t, 30, resp.Duration)
}
