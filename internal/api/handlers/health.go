package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	database "crowdqr/internal/db"
)

// HealthHandler serves liveness/readiness probes and the API ping.
type HealthHandler struct {
	db  *database.Client
	env string
}

func NewHealthHandler(db *database.Client, env string) *HealthHandler {
	return &HealthHandler{db: db, env: env}
}

// Ping is the API-level liveness check.
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}

// Health is the composite check: process up plus store connectivity.
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "up"
	status := "ok"
	code := http.StatusOK

	if err := h.db.Ping(c.Request.Context()); err != nil {
		dbStatus = "down"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
	})
}

// Ready fails while the store is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live only proves the process is serving.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
