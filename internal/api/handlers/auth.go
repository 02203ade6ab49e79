package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/config"
	"crowdqr/internal/models"
)

// AuthHandler issues tokens. DJs register with credentials; audience
// members are created implicitly on their first join.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Register creates a DJ account.
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Password string `json:"password" binding:"required,min=8"`
		Email    string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         models.RoleDJ,
	}
	if err := h.db.Create(&user).Error; err != nil {
		storeError(c, err, "Username")
		return
	}

	// Email delivery is a stub: the welcome mail is a log line.
	if user.Email != "" {
		slog.Info("welcome email queued", "user", user.Username, "email", user.Email)
	}

	token, err := middleware.GenerateToken(h.cfg, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login authenticates a DJ by password.
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(h.cfg, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Join is the audience entry point: find or create an audience user by
// username and hand back a token. No password involved.
func (h *AuthHandler) Join(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.db.Where("username = ?", input.Username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{Username: input.Username, Role: models.RoleAudience}
		err = h.db.Create(&user).Error
	}
	if err != nil {
		storeError(c, err, "User")
		return
	}
	if user.Role == models.RoleDJ {
		// A DJ name can't be hijacked by walking in without a password.
		c.JSON(http.StatusConflict, gin.H{"error": "Username requires a password login"})
		return
	}

	token, err := middleware.GenerateToken(h.cfg, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
