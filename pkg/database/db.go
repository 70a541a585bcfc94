package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// User represents the users table. Freelancers own services; everyone can book.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsFreelancer bool      `gorm:"default:false" json:"is_freelancer"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category represents the categories table
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null;size:100" json:"name"`
}

// Service represents the services table
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	CategoryID  uint      `gorm:"index;not null" json:"category_id"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `gorm:"not null" json:"price"`
	Duration    int       `gorm:"not null" json:"duration"`
	CreatedAt   time.Time `json:"created_at"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Appointment represents the appointments table. ScheduledAt is naive wall-clock time kept in UTC.
type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClientID    uint      `gorm:"index;not null" json:"client_id"`
	ServiceID   uint      `gorm:"index;not null" json:"service_id"`
	ScheduledAt time.Time `gorm:"index;not null" json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

// AfterFind returns stored wall-clock times in UTC whatever zone the driver reads them in
func (a *Appointment) AfterFind(*gorm.DB) error {
	a.ScheduledAt = a.ScheduledAt.UTC()
	return nil
}

// Pending booking states
const (
	PendingStatusPending   = "pending"
	PendingStatusConfirmed = "confirmed"
	PendingStatusFailed    = "failed"
	PendingStatusExpired   = "expired"
)

// PendingBooking carries a chosen slot across an external checkout redirect
type PendingBooking struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ClientID      uint      `gorm:"index;not null" json:"client_id"`
	ServiceID     uint      `gorm:"not null" json:"service_id"`
	ScheduledAt   time.Time `gorm:"not null" json:"scheduled_at"`
	SessionID     *string   `gorm:"uniqueIndex" json:"session_id,omitempty"`
	Status        string    `gorm:"index;not null;default:pending" json:"status"`
	AppointmentID *uint     `json:"appointment_id,omitempty"`
	ExpiresAt     time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// AfterFind returns stored times in UTC
func (p *PendingBooking) AfterFind(*gorm.DB) error {
	p.ScheduledAt = p.ScheduledAt.UTC()
	p.ExpiresAt = p.ExpiresAt.UTC()
	return nil
}

// Open connects to postgres when dsn is set, otherwise to the sqlite file at
// path, and migrates the schema
func Open(dsn, path string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
			Logger:      logger.Default.LogMode(logger.Warn),
		})
	} else {
		if path == "" {
			path = "autonomeet.db"
		}
		db, err = gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Category{}, &Service{}, &Appointment{}, &PendingBooking{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
