package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	database "crowdqr/internal/db"
	"crowdqr/internal/models"
)

// setupDB creates a throwaway in-memory database per test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := database.NewSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	client.AutoMigrate()
	return client.DB
}

// asUser stubs the auth middleware: requests run with this identity.
func asUser(u *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", u.ID)
		c.Set("username", u.Username)
		c.Set("user_role", u.Role)
		c.Next()
	}
}

// broadcastRecord captures one notification for assertions.
type broadcastRecord struct {
	Name      string
	EventID   uint
	RequestID uint
	VoteCount int64
	Detail    string
}

// recorder substitutes the hub in handler tests.
type recorder struct {
	records []broadcastRecord
}

func (r *recorder) RequestAdded(eventID, requestID uint, requesterName string) {
	r.records = append(r.records, broadcastRecord{Name: "requestAdded", EventID: eventID, RequestID: requestID, Detail: requesterName})
}

func (r *recorder) RequestStatusUpdated(eventID, requestID uint, status string) {
	r.records = append(r.records, broadcastRecord{Name: "requestStatusUpdated", EventID: eventID, RequestID: requestID, Detail: status})
}

func (r *recorder) VoteAdded(eventID, requestID uint, voteCount int64, userID uint) {
	r.records = append(r.records, broadcastRecord{Name: "voteAdded", EventID: eventID, RequestID: requestID, VoteCount: voteCount})
}

func (r *recorder) VoteRemoved(eventID, requestID uint, voteCount int64) {
	r.records = append(r.records, broadcastRecord{Name: "voteRemoved", EventID: eventID, RequestID: requestID, VoteCount: voteCount})
}

func (r *recorder) last(t *testing.T) broadcastRecord {
	t.Helper()
	if len(r.records) == 0 {
		t.Fatal("no broadcast recorded")
	}
	return r.records[len(r.records)-1]
}

// doJSON performs a request with an optional JSON body.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}
