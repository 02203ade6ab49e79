package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crowdqr/internal/reports"
)

// ReportsHandler serves the DJ report endpoints.
type ReportsHandler struct {
	reports *reports.Service
}

func NewReportsHandler(svc *reports.Service) *ReportsHandler {
	return &ReportsHandler{reports: svc}
}

func (h *ReportsHandler) GetEventPerformance(c *gin.Context) {
	eventID, ok := parseID(c, "eventId")
	if !ok {
		return
	}
	perf, err := h.reports.EventPerformance(eventID)
	if err != nil {
		storeError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, perf)
}

// GetDJAnalytics rolls up the calling DJ's events.
func (h *ReportsHandler) GetDJAnalytics(c *gin.Context) {
	djID, _ := c.Get("user_id")
	analytics, err := h.reports.Analytics(djID.(uint))
	if err != nil {
		storeError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// ExportDJAnalytics streams the analytics workbook as an xlsx download.
func (h *ReportsHandler) ExportDJAnalytics(c *gin.Context) {
	djID, _ := c.Get("user_id")
	f, err := h.reports.ExportAnalytics(djID.(uint))
	if err != nil {
		storeError(c, err, "User")
		return
	}

	filename := fmt.Sprintf("crowdqr-analytics-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
