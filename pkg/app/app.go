package app

import (
	"fmt"

	"github.com/autonomeet/autonomeet-api/pkg/auth"
	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/checkout"
	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/autonomeet/autonomeet-api/pkg/handlers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App bundles the wired components shared by the server and serverless entry points
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Bookings *booking.Service
	Router   *gin.Engine
}

// Build opens the database, seeds the admin account and assembles the router
func Build(cfg *config.Config, log *zap.Logger) (*App, error) {
	switch {
	case cfg.GinMode != "":
		gin.SetMode(cfg.GinMode)
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, err
	}

	if err := auth.EnsureAdminExists(db, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	bookings := booking.NewService(db, cfg.Policy(), log)
	h := handlers.New(db, cfg, bookings, CheckoutProvider(cfg, log), log)

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Bookings: bookings,
		Router:   handlers.NewRouter(h),
	}, nil
}

// CheckoutProvider picks Stripe when a secret key is configured
func CheckoutProvider(cfg *config.Config, log *zap.Logger) checkout.Provider {
	if cfg.StripeSecretKey != "" {
		return checkout.NewStripeProvider(cfg.StripeSecretKey)
	}
	if cfg.IsProduction() {
		log.Warn("STRIPE_SECRET_KEY not set, checkout sessions are settled without payment")
	}
	return checkout.NewLocalProvider()
}
