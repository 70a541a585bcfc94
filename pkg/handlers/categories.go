package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/autonomeet/autonomeet-api/pkg/database"
	"github.com/autonomeet/autonomeet-api/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCategories returns all categories by name
func (h *Handler) ListCategories(c *gin.Context) {
	var categories []database.Category
	if err := h.DB.Order("name").Find(&categories).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	category, found := h.findCategory(c, id)
	if !found {
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory adds a category with a unique name
func (h *Handler) CreateCategory(c *gin.Context) {
	var req models.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if h.categoryNameTaken(c, name, 0) {
		return
	}

	category := database.Category{Name: name}
	if err := h.DB.Create(&category).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a category
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, found := h.findCategory(c, id)
	if !found {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if h.categoryNameTaken(c, name, id) {
		return
	}

	if err := h.DB.Model(category).Update("name", name).Error; err != nil {
		h.respondError(c, err)
		return
	}
	category.Name = name
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category that no service uses
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, found := h.findCategory(c, id); !found {
		return
	}

	var count int64
	if err := h.DB.Model(&database.Service{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		h.respondError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category is used by services and cannot be deleted"})
		return
	}

	if err := h.DB.Delete(&database.Category{}, id).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func (h *Handler) findCategory(c *gin.Context, id uint) (*database.Category, bool) {
	var category database.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		} else {
			h.respondError(c, err)
		}
		return nil, false
	}
	return &category, true
}

func (h *Handler) categoryNameTaken(c *gin.Context, name string, exceptID uint) bool {
	var count int64
	if err := h.DB.Model(&database.Category{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		h.respondError(c, err)
		return true
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return true
	}
	return false
}
