package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 8, cfg.Policy().StartHour)
	assert.Equal(t, 14, cfg.Policy().EndHour)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 30*time.Minute, cfg.PendingTTL())
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("WORK_START_HOUR", "9")
	t.Setenv("WORK_END_HOUR", "17")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://autonomeet.app,https://www.autonomeet.app")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.WorkStartHour)
	assert.Equal(t, 17, cfg.WorkEndHour)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://autonomeet.app", "https://www.autonomeet.app"}, cfg.CORSOrigins)
}

func TestFromViper_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromViper(viper.New())
	assert.Error(t, err)
}

func TestFromViper_RejectsInvertedWorkingHours(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("WORK_START_HOUR", "14")
	t.Setenv("WORK_END_HOUR", "8")

	_, err := FromViper(viper.New())
	assert.Error(t, err)
}
