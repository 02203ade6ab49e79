package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crowdqr/internal/dashboard"
)

// DashboardHandler exposes the DJ dashboard aggregations.
type DashboardHandler struct {
	dash *dashboard.Service
}

func NewDashboardHandler(dash *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dash: dash}
}

// GetEventSummary returns the status partition, vote totals and the
// active audience count for one event.
func (h *DashboardHandler) GetEventSummary(c *gin.Context) {
	eventID, ok := parseID(c, "eventId")
	if !ok {
		return
	}
	summary, err := h.dash.EventSummary(eventID)
	if err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTopRequests returns the most-voted requests in one status.
// Query params: status (default Pending), count (default 10).
func (h *DashboardHandler) GetTopRequests(c *gin.Context) {
	eventID, ok := parseID(c, "eventId")
	if !ok {
		return
	}
	count, _ := strconv.Atoi(c.DefaultQuery("count", "10"))

	views, err := h.dash.TopRequests(eventID, c.Query("status"), count)
	if err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetDJEventStats returns the per-event breakdown for one DJ.
func (h *DashboardHandler) GetDJEventStats(c *gin.Context) {
	djID, ok := parseID(c, "djUserId")
	if !ok {
		return
	}
	stats, err := h.dash.DJEventStats(djID)
	if err != nil {
		storeError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
