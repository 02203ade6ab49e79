package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/models"
)

// UserHandler handles user CRUD.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUsers returns all users.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("created_at ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		storeError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUsersByRole lists users holding one role ("audience" or "dj").
func (h *UserHandler) GetUsersByRole(c *gin.Context) {
	role := c.Param("role")
	if role != models.RoleAudience && role != models.RoleDJ {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}
	var users []models.User
	if err := h.db.Where("role = ?", role).Order("username ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	var user models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		storeError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser creates an audience user. DJ accounts go through
// /api/auth/register, which collects credentials.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
		Email    string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{Username: input.Username, Email: input.Email, Role: models.RoleAudience}
	if err := h.db.Create(&user).Error; err != nil {
		storeError(c, err, "Username")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser edits username/email; self or DJ only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !middleware.CanActFor(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your identity"})
		return
	}

	var input struct {
		Username string `json:"username"`
		Email    string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		storeError(c, err, "User")
		return
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Email != "" {
		user.Email = input.Email
	}

	if err := h.db.Save(&user).Error; err != nil {
		storeError(c, err, "Username")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user. The store rejects the delete while the user
// still has votes or hosts events (RESTRICT), which surfaces as 409.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&models.User{}, id)
	if result.Error != nil {
		storeError(c, result.Error, "User")
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
