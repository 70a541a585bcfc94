package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log := New(&config.Config{Env: "production", LogLevel: "warn", LogFile: path})

	log.Info("dropped below level")
	log.Warn("slot taken", zap.Uint("service_id", 7))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"slot taken"`)
	assert.Contains(t, string(data), `"service_id":7`)
	assert.NotContains(t, string(data), "dropped below level")
}
