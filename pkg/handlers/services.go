package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListServices returns all services, optionally filtered by ?category_id=
func (h *Handler) ListServices(c *gin.Context) {
	q := h.DB.Preload("Category").Order("id")

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		q = q.Where("category_id = ?", categoryID)
	}

	var services []database.Service
	if err := q.Find(&services).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// GetService returns one service
func (h *Handler) GetService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	svc, found := h.findService(c, id)
	if !found {
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService lists a new service owned by the calling freelancer
func (h *Handler) CreateService(c *gin.Context) {
	var req models.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.categoryExists(c, req.CategoryID) {
		return
	}

	svc := database.Service{
		UserID:      currentUser(c).ID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
	}
	if err := h.DB.Create(&svc).Error; err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("service created", zap.Uint("service_id", svc.ID), zap.Uint("user_id", svc.UserID))
	c.JSON(http.StatusCreated, svc)
}

// UpdateService edits a service owned by the caller
func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.ServiceUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, found := h.findService(c, id)
	if !found {
		return
	}
	if svc.UserID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own services"})
		return
	}

	updates := map[string]any{}
	if req.CategoryID != nil {
		if !h.categoryExists(c, *req.CategoryID) {
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Duration != nil && *req.Duration != svc.Duration {
		if err := h.Bookings.ChangeDuration(c.Request.Context(), svc.ID, *req.Duration); err != nil {
			h.respondError(c, err)
			return
		}
	}

	if len(updates) > 0 {
		if err := h.DB.Model(svc).Updates(updates).Error; err != nil {
			h.respondError(c, err)
			return
		}
	}
	if len(updates) > 0 || req.Duration != nil {
		if svc, found = h.findService(c, id); !found {
			return
		}
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteService removes a service owned by the caller that has no appointments
func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	svc, found := h.findService(c, id)
	if !found {
		return
	}
	if svc.UserID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own services"})
		return
	}

	var count int64
	if err := h.DB.Model(&database.Appointment{}).Where("service_id = ?", id).Count(&count).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service has appointments and cannot be deleted"})
		return
	}

	if err := h.DB.Delete(&database.Service{}, id).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

// ListFreelancerServices returns the services of one freelancer
func (h *Handler) ListFreelancerServices(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var services []database.Service
	if err := h.DB.Preload("Category").Where("user_id = ?", id).Order("id").Find(&services).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// ListCategoryServices returns the services in one category
func (h *Handler) ListCategoryServices(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var services []database.Service
	if err := h.DB.Where("category_id = ?", id).Order("id").Find(&services).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *Handler) findService(c *gin.Context, id uint) (*database.Service, bool) {
	var svc database.Service
	if err := h.DB.Preload("Category").First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		} else {
			h.respondError(c, err)
		}
		return nil, false
	}
	return &svc, true
}

func (h *Handler) categoryExists(c *gin.Context, id uint) bool {
	var count int64
	if err := h.DB.Model(&database.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		h.respondError(c, err)
		return false
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
		return false
	}
	return true
}
