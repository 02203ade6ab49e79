package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"crowdqr/internal/models"
)

// EventHandler handles DJ event CRUD.
type EventHandler struct {
	db *gorm.DB
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	query := h.db.Order("created_at DESC")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var event models.Event
	if err := h.db.First(&event, id).Error; err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// GetEventBySlug resolves the audience-facing URL (the QR code target).
func (h *EventHandler) GetEventBySlug(c *gin.Context) {
	var event models.Event
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&event).Error; err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEvent creates an event owned by the calling DJ. An omitted slug
// is derived from the name; a colliding derived slug gets a short uuid
// suffix, while an explicit duplicate slug is the caller's problem (409).
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required,max=255"`
		Slug string `json:"slug" binding:"omitempty,max=100"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	djID, _ := c.Get("user_id")
	event := models.Event{
		DJUserID: djID.(uint),
		Name:     input.Name,
		Slug:     input.Slug,
		IsActive: true,
	}

	explicitSlug := event.Slug != ""
	if !explicitSlug {
		event.Slug = slugify(input.Name)
	}

	err := h.db.Create(&event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) && !explicitSlug {
		event.ID = 0
		event.Slug = event.Slug + "-" + uuid.NewString()[:8]
		err = h.db.Create(&event).Error
	}
	if err != nil {
		storeError(c, err, "Event slug")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent edits name/active flag; only the owning DJ.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Name     string `json:"name"`
		IsActive *bool  `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event models.Event
	if err := h.db.First(&event, id).Error; err != nil {
		storeError(c, err, "Event")
		return
	}

	if djID, _ := c.Get("user_id"); djID != event.DJUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your event"})
		return
	}

	if input.Name != "" {
		event.Name = input.Name
	}
	if input.IsActive != nil {
		event.IsActive = *input.IsActive
	}

	if err := h.db.Save(&event).Error; err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event; requests, votes and sessions cascade at
// the store level.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var event models.Event
	if err := h.db.First(&event, id).Error; err != nil {
		storeError(c, err, "Event")
		return
	}
	if djID, _ := c.Get("user_id"); djID != event.DJUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your event"})
		return
	}

	if err := h.db.Delete(&event).Error; err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
