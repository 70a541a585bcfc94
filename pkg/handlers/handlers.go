package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/auth"
	"github.com/autonomeet/autonomeet-api/pkg/availability"
	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/checkout"
	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const userKey = "user"

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB
	Bookings *booking.Service
	Checkout checkout.Provider
	Tokens   *auth.TokenManager
	Config   *config.Config
	Log      *zap.Logger
	Now      func() time.Time
}

// New wires a Handler from its collaborators
func New(db *gorm.DB, cfg *config.Config, bookings *booking.Service, provider checkout.Provider, log *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Bookings: bookings,
		Checkout: provider,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		Config:   cfg,
		Log:      log,
		Now:      time.Now,
	}
}

// AuthMiddleware verifies the bearer token and loads the caller
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}

		claims, err := h.Tokens.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var user database.User
		if err := h.DB.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

// FreelancerOnly rejects callers without the freelancer role
func (h *Handler) FreelancerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsFreelancer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only freelancers can do this"})
			return
		}
		c.Next()
	}
}

// AdminOnly rejects callers without the admin role
func (h *Handler) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only admins can do this"})
			return
		}
		c.Next()
	}
}

// Health reports the service name and version
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "AutonoMeet API",
		"version": "1.0.0",
	})
}

func currentUser(c *gin.Context) *database.User {
	return c.MustGet(userKey).(*database.User)
}

// paramID reads a positive integer path parameter, answering 400 otherwise
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain errors onto status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, booking.ErrServiceNotFound),
		errors.Is(err, booking.ErrAppointmentNotFound),
		errors.Is(err, booking.ErrPendingNotFound),
		errors.Is(err, checkout.ErrSessionNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, booking.ErrSlotTaken),
		errors.Is(err, booking.ErrDurationConflict),
		errors.Is(err, booking.ErrPendingFailed):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrOutsideWorkingHours),
		errors.Is(err, availability.ErrInvalidDuration),
		errors.Is(err, availability.ErrInvalidPolicy):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrPendingForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, booking.ErrPendingExpired):
		status, msg = http.StatusGone, err.Error()
	}

	if status == http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}
