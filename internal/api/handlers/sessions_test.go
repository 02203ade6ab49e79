package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"crowdqr/internal/models"
)

func TestSessionUpsertNeverDuplicates(t *testing.T) {
	db := setupDB(t)

	dj := models.User{Username: "sess_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)
	fan := models.User{Username: "sess_fan", Role: models.RoleAudience}
	mustCreate(t, db, &fan)
	event := models.Event{DJUserID: dj.ID, Name: "Sess", Slug: "sess"}
	mustCreate(t, db, &event)

	r := gin.New()
	r.Use(asUser(&fan))
	h := NewSessionHandler(db)
	r.PUT("/api/session", h.UpsertSession)

	body := gin.H{"userId": fan.ID, "eventId": event.ID}

	w := doJSON(t, r, "PUT", "/api/session", body)
	if w.Code != http.StatusOK {
		t.Fatalf("first upsert: status %d, body %s", w.Code, w.Body.String())
	}

	var first models.Session
	if err := db.Where("event_id = ? AND user_id = ?", event.ID, fan.ID).First(&first).Error; err != nil {
		t.Fatalf("session missing: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	w = doJSON(t, r, "PUT", "/api/session", body)
	if w.Code != http.StatusOK {
		t.Fatalf("second upsert: status %d", w.Code)
	}

	var count int64
	db.Model(&models.Session{}).Where("event_id = ? AND user_id = ?", event.ID, fan.ID).Count(&count)
	if count != 1 {
		t.Fatalf("sessions for pair = %d, want exactly 1", count)
	}

	var second models.Session
	db.Where("event_id = ? AND user_id = ?", event.ID, fan.ID).First(&second)
	if !second.LastSeen.After(first.LastSeen) {
		t.Errorf("last_seen not refreshed: %v -> %v", first.LastSeen, second.LastSeen)
	}
}

func TestSessionUpsertValidatesReferences(t *testing.T) {
	db := setupDB(t)
	dj := models.User{Username: "sessv_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)

	r := gin.New()
	r.Use(asUser(&dj))
	h := NewSessionHandler(db)
	r.PUT("/api/session", h.UpsertSession)

	w := doJSON(t, r, "PUT", "/api/session", gin.H{"userId": dj.ID, "eventId": 9999})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown event: status %d, want 400", w.Code)
	}
	// The caller is a DJ, so the identity gate passes and the missing
	// user reference is what trips.
	w = doJSON(t, r, "PUT", "/api/session", gin.H{"userId": 9999, "eventId": 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown user: status %d, want 400", w.Code)
	}
}

func TestTouchSessionBumpsRequestCounter(t *testing.T) {
	db := setupDB(t)
	dj := models.User{Username: "bump_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)
	event := models.Event{DJUserID: dj.ID, Name: "Bump", Slug: "bump"}
	mustCreate(t, db, &event)

	for i := 0; i < 3; i++ {
		if err := TouchSession(db, dj.ID, event.ID, "10.0.0.1", true); err != nil {
			t.Fatalf("touch %d: %v", i, err)
		}
	}

	var session models.Session
	if err := db.Where("event_id = ? AND user_id = ?", event.ID, dj.ID).First(&session).Error; err != nil {
		t.Fatalf("session missing: %v", err)
	}
	if session.RequestCount != 3 {
		t.Errorf("request count = %d, want 3", session.RequestCount)
	}
	if session.ClientIP != "10.0.0.1" {
		t.Errorf("client ip = %q", session.ClientIP)
	}
}
