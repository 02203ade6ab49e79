package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/models"
)

// SessionHandler tracks audience presence per (user, event).
type SessionHandler struct {
	db *gorm.DB
}

func NewSessionHandler(db *gorm.DB) *SessionHandler {
	return &SessionHandler{db: db}
}

// TouchSession upserts the (user, event) presence row: refreshes
// last_seen and client IP, and optionally bumps the request counter.
// The composite unique index guarantees at most one row per pair even
// under concurrent touches.
func TouchSession(db *gorm.DB, userID, eventID uint, clientIP string, bumpRequests bool) error {
	now := time.Now()
	assignments := map[string]interface{}{
		"last_seen": now,
		"client_ip": clientIP,
	}
	if bumpRequests {
		assignments["request_count"] = gorm.Expr("sessions.request_count + 1")
	}

	session := models.Session{
		EventID:  eventID,
		UserID:   userID,
		ClientIP: clientIP,
		LastSeen: now,
	}
	if bumpRequests {
		session.RequestCount = 1
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&session).Error
}

// UpsertSession refreshes the caller's presence for an event.
func (h *SessionHandler) UpsertSession(c *gin.Context) {
	var input struct {
		UserID  uint `json:"userId" binding:"required"`
		EventID uint `json:"eventId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !middleware.CanActFor(c, input.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your identity"})
		return
	}

	var user models.User
	if err := h.db.First(&user, input.UserID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced user does not exist"})
		return
	}
	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced event does not exist"})
		return
	}

	if err := TouchSession(h.db, input.UserID, input.EventID, c.ClientIP(), false); err != nil {
		storeError(c, err, "Session")
		return
	}

	var session models.Session
	h.db.Where("event_id = ? AND user_id = ?", input.EventID, input.UserID).First(&session)
	c.JSON(http.StatusOK, session)
}

// GetEventSessions lists presence rows for an event, most recent first.
func (h *SessionHandler) GetEventSessions(c *gin.Context) {
	eventID, ok := parseID(c, "eventId")
	if !ok {
		return
	}
	var event models.Event
	if err := h.db.Select("id").First(&event, eventID).Error; err != nil {
		storeError(c, err, "Event")
		return
	}

	var sessions []models.Session
	if err := h.db.Where("event_id = ?", eventID).Order("last_seen DESC").Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions})
}
