package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/autonomeet/autonomeet-api/pkg/auth"
	"github.com/autonomeet/autonomeet-api/pkg/checkout"
	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		GinMode:           "test",
		DataPath:          filepath.Join(t.TempDir(), "app.db"),
		JWTSecret:         "test-secret",
		TokenTTLHours:     1,
		AdminEmail:        "Admin@Example.com",
		AdminPassword:     "admin-pass",
		WorkStartHour:     8,
		WorkEndHour:       14,
		Currency:          "usd",
		PendingTTLMinutes: 30,
		PendingSweepSpec:  "@every 5m",
	}
}

func TestBuild(t *testing.T) {
	a, err := Build(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	var admin database.User
	require.NoError(t, a.DB.Where("is_admin = ?", true).First(&admin).Error)
	assert.Equal(t, "admin@example.com", admin.Email)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckoutProvider(t *testing.T) {
	cfg := testConfig(t)

	_, local := CheckoutProvider(cfg, zap.NewNop()).(*checkout.LocalProvider)
	assert.True(t, local)

	cfg.StripeSecretKey = "sk_test_123"
	_, stripe := CheckoutProvider(cfg, zap.NewNop()).(*checkout.StripeProvider)
	assert.True(t, stripe)
}
