package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/dashboard"
	"crowdqr/internal/hub"
	"crowdqr/internal/metadata"
	"crowdqr/internal/models"
)

// RequestHandler handles song request creation and DJ moderation.
type RequestHandler struct {
	db       *gorm.DB
	dash     *dashboard.Service
	notifier hub.Notifier
	enricher *metadata.Enricher
}

func NewRequestHandler(db *gorm.DB, dash *dashboard.Service, notifier hub.Notifier, enricher *metadata.Enricher) *RequestHandler {
	return &RequestHandler{db: db, dash: dash, notifier: notifier, enricher: enricher}
}

// GetRequests returns all requests, newest first.
func (h *RequestHandler) GetRequests(c *gin.Context) {
	var requests []models.Request
	if err := h.db.Preload("Metadata").Order("created_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requests})
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var request models.Request
	if err := h.db.Preload("Metadata").First(&request, id).Error; err != nil {
		storeError(c, err, "Request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// GetEventRequests returns the event's requests with live vote counts.
func (h *RequestHandler) GetEventRequests(c *gin.Context) {
	eventID, ok := parseID(c, "eventId")
	if !ok {
		return
	}
	views, err := h.dash.RequestsForEvent(eventID)
	if err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// CreateRequest files a new song request. Status is always Pending on
// create; the requestAdded broadcast carries the requester's name.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var input struct {
		UserID     uint   `json:"userId" binding:"required"`
		EventID    uint   `json:"eventId" binding:"required"`
		SongName   string `json:"songName" binding:"required,max=255"`
		ArtistName string `json:"artistName" binding:"max=255"`
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
	if !event.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event is not accepting requests"})
		return
	}

	request := models.Request{
		UserID:     input.UserID,
		EventID:    input.EventID,
		SongName:   input.SongName,
		ArtistName: input.ArtistName,
		Status:     models.StatusPending,
	}
	if err := h.db.Create(&request).Error; err != nil {
		storeError(c, err, "Request")
		return
	}

	requestsFiledTotal.Inc()
	TouchSession(h.db, user.ID, event.ID, c.ClientIP(), true)
	h.notifier.RequestAdded(event.ID, request.ID, user.Username)

	// Catalog enrichment is best-effort and off the request path.
	if h.enricher != nil {
		go h.enricher.EnrichRequest(h.db, request.ID, request.SongName, request.ArtistName)
	}

	c.JSON(http.StatusCreated, request)
}

// UpdateStatus moves a request between Pending/Approved/Rejected. Allowed
// for the request owner or any DJ; that's the only mutation a request sees.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	var request models.Request
	if err := h.db.First(&request, id).Error; err != nil {
		storeError(c, err, "Request")
		return
	}
	if !middleware.CanActFor(c, request.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your request"})
		return
	}

	request.Status = input.Status
	if err := h.db.Save(&request).Error; err != nil {
		storeError(c, err, "Request")
		return
	}

	h.notifier.RequestStatusUpdated(request.EventID, request.ID, request.Status)
	c.JSON(http.StatusOK, request)
}

// DeleteRequest removes a request; votes and metadata cascade. DJ-only,
// and no broadcast is owed (deletion is best-effort housekeeping).
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&models.Request{}, id)
	if result.Error != nil {
		storeError(c, result.Error, "Request")
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}
