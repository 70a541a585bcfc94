package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/autonomeet/autonomeet-api/pkg/auth"
	"github.com/autonomeet/autonomeet-api/pkg/availability"
	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/autonomeet/autonomeet-api/pkg/logger"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context is handed to every command
type Context struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Bookings *booking.Service
}

type CreateAdminCmd struct {
	Email    string `arg:"" help:"Admin email address."`
	Password string `help:"Password; falls back to ADMIN_PASSWORD." env:"ADMIN_PASSWORD"`
}

func (c *CreateAdminCmd) Run(ctx *Context) error {
	if c.Password == "" {
		return errors.New("a password is required")
	}

	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		return err
	}

	email := auth.NormalizeEmail(c.Email)
	var user database.User
	err = ctx.DB.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = database.User{Email: email, PasswordHash: hash, IsAdmin: true}
		if err := ctx.DB.Create(&user).Error; err != nil {
			return err
		}
		fmt.Printf("Created admin %s (id %d)\n", user.Email, user.ID)
	case err != nil:
		return err
	default:
		if err := ctx.DB.Model(&user).Updates(map[string]any{"is_admin": true, "password_hash": hash}).Error; err != nil {
			return err
		}
		fmt.Printf("Promoted %s (id %d) to admin\n", user.Email, user.ID)
	}
	return nil
}

type PrunePendingCmd struct{}

func (c *PrunePendingCmd) Run(ctx *Context) error {
	n, err := ctx.Bookings.PruneExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Expired %d pending bookings\n", n)
	return nil
}

type SlotsCmd struct {
	Service uint   `arg:"" help:"Service ID."`
	Date    string `arg:"" help:"Day as YYYY-MM-DD."`
}

func (c *SlotsCmd) Run(ctx *Context) error {
	day, err := models.ParseDate(c.Date)
	if err != nil {
		return err
	}

	svc, slots, err := ctx.Bookings.Availability(context.Background(), c.Service, day)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d min) on %s:\n", svc.Title, svc.Duration, c.Date)
	if len(slots) == 0 {
		fmt.Println("  no free slots")
		return nil
	}
	for _, label := range availability.Labels(slots, models.SlotLabel) {
		fmt.Printf("  %s\n", label)
	}
	return nil
}

var CLI struct {
	CreateAdmin  CreateAdminCmd  `cmd:"" help:"Create an admin user or promote an existing one."`
	PrunePending PrunePendingCmd `cmd:"" help:"Expire abandoned pending bookings now."`
	Slots        SlotsCmd        `cmd:"" help:"Print the free slots of a service on a day."`
}

func main() {
	config.LoadDotEnv()

	kctx := kong.Parse(&CLI,
		kong.Name("autonomeet-admin"),
		kong.Description("Maintenance commands for the AutonoMeet API"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(&Context{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Bookings: booking.NewService(db, cfg.Policy(), log),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
