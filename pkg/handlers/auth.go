package handlers

import (
	"errors"
	"net/http"

	"github.com/autonomeet/autonomeet-api/pkg/auth"
	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Register creates a client or freelancer account and logs it in
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := auth.NormalizeEmail(req.Email)

	var count int64
	if err := h.DB.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user := database.User{
		Email:        email,
		PasswordHash: hash,
		IsFreelancer: req.IsFreelancer,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Tokens.CreateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	h.Log.Info("user registered", zap.Uint("user_id", user.ID), zap.Bool("freelancer", user.IsFreelancer))
	c.JSON(http.StatusCreated, authResponse("User registered successfully", &user, token))
}

// Login exchanges credentials for an access token
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := auth.Authenticate(h.DB, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Tokens.CreateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, authResponse("Login successful", user, token))
}

// Me returns the authenticated user
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func authResponse(msg string, user *database.User, token string) models.AuthResponse {
	return models.AuthResponse{
		Message:      msg,
		UserID:       user.ID,
		Email:        user.Email,
		IsFreelancer: user.IsFreelancer,
		IsAdmin:      user.IsAdmin,
		AccessToken:  token,
		TokenType:    "bearer",
	}
}
