package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/dashboard"
	"crowdqr/internal/hub"
	"crowdqr/internal/models"
)

// VoteHandler enforces the one-vote-per-user-per-request rule and keeps
// live counts flowing to the hub.
type VoteHandler struct {
	db       *gorm.DB
	dash     *dashboard.Service
	notifier hub.Notifier
}

func NewVoteHandler(db *gorm.DB, dash *dashboard.Service, notifier hub.Notifier) *VoteHandler {
	return &VoteHandler{db: db, dash: dash, notifier: notifier}
}

// GetRequestVotes lists the votes on one request plus the count.
func (h *VoteHandler) GetRequestVotes(c *gin.Context) {
	requestID, ok := parseID(c, "requestId")
	if !ok {
		return
	}
	var request models.Request
	if err := h.db.Select("id").First(&request, requestID).Error; err != nil {
		storeError(c, err, "Request")
		return
	}

	var votes []models.Vote
	if err := h.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&votes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch votes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": votes, "count": len(votes)})
}

// CreateVote casts a vote. Missing references are 400, a duplicate
// (user, request) pair is 409 — the unique index is the arbiter, so two
// racing creates can't both win.
func (h *VoteHandler) CreateVote(c *gin.Context) {
	var input struct {
		UserID    uint `json:"userId" binding:"required"`
		RequestID uint `json:"requestId" binding:"required"`
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
	var request models.Request
	if err := h.db.First(&request, input.RequestID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced request does not exist"})
		return
	}

	vote := models.Vote{UserID: input.UserID, RequestID: input.RequestID}
	if err := h.db.Create(&vote).Error; err != nil {
		storeError(c, err, "Vote")
		return
	}

	votesCastTotal.Inc()
	TouchSession(h.db, user.ID, request.EventID, c.ClientIP(), false)

	count, err := h.dash.VoteCount(request.ID)
	if err == nil {
		h.notifier.VoteAdded(request.EventID, request.ID, count, user.ID)
	}

	c.JSON(http.StatusCreated, gin.H{"vote": vote, "voteCount": count})
}

// DeleteVote withdraws a vote identified by its (user, request) pair.
// The route-level SelfOrDJ guard has already vetted the identity.
func (h *VoteHandler) DeleteVote(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	requestID, ok := parseID(c, "requestId")
	if !ok {
		return
	}

	var vote models.Vote
	err := h.db.Where("user_id = ? AND request_id = ?", userID, requestID).First(&vote).Error
	if err != nil {
		storeError(c, err, "Vote")
		return
	}

	var request models.Request
	if err := h.db.First(&request, requestID).Error; err != nil {
		storeError(c, err, "Request")
		return
	}

	if err := h.db.Delete(&vote).Error; err != nil {
		storeError(c, err, "Vote")
		return
	}

	count, err := h.dash.VoteCount(requestID)
	if err == nil {
		h.notifier.VoteRemoved(request.EventID, requestID, count)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote removed", "voteCount": count})
}
