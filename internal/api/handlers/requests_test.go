package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/dashboard"
	"crowdqr/internal/models"
)

func requestRouter(db *gorm.DB, caller *models.User, rec *recorder) *gin.Engine {
	r := gin.New()
	r.Use(asUser(caller))
	h := NewRequestHandler(db, dashboard.New(db, 0), rec, nil)
	r.GET("/api/request/event/:eventId", h.GetEventRequests)
	r.POST("/api/request", h.CreateRequest)
	r.PUT("/api/request/:id/status", h.UpdateStatus)
	r.DELETE("/api/request/:id", middleware.RequireRole("dj"), h.DeleteRequest)
	return r
}

func TestCreateRequestPendingWithBroadcast(t *testing.T) {
	db := setupDB(t)

	dj := models.User{Username: "req_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)
	fan := models.User{Username: "req_fan", Role: models.RoleAudience}
	mustCreate(t, db, &fan)
	event := models.Event{DJUserID: dj.ID, Name: "Disco Night", Slug: "disco-night", IsActive: true}
	mustCreate(t, db, &event)

	rec := &recorder{}
	router := requestRouter(db, &fan, rec)

	w := doJSON(t, router, "POST", "/api/request", gin.H{
		"userId":   fan.ID,
		"eventId":  event.ID,
		"songName": "Stayin' Alive",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create request: status %d, body %s", w.Code, w.Body.String())
	}

	var created models.Request
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Errorf("status = %q, want Pending", created.Status)
	}

	got := rec.last(t)
	if got.Name != "requestAdded" || got.EventID != event.ID || got.Detail != fan.Username {
		t.Errorf("broadcast = %+v, want requestAdded for event %d by %q", got, event.ID, fan.Username)
	}

	// Filing a request also registers presence.
	var session models.Session
	if err := db.Where("event_id = ? AND user_id = ?", event.ID, fan.ID).First(&session).Error; err != nil {
		t.Fatalf("session not touched: %v", err)
	}
	if session.RequestCount != 1 {
		t.Errorf("session request count = %d, want 1", session.RequestCount)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	db := setupDB(t)
	dj := models.User{Username: "val_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)
	fan := models.User{Username: "val_fan", Role: models.RoleAudience}
	mustCreate(t, db, &fan)
	event := models.Event{DJUserID: dj.ID, Name: "Val", Slug: "val", IsActive: true}
	mustCreate(t, db, &event)
	closed := models.Event{DJUserID: dj.ID, Name: "Closed", Slug: "val-closed", IsActive: false}
	mustCreate(t, db, &closed)

	router := requestRouter(db, &dj, &recorder{})

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"unknown event", gin.H{"userId": fan.ID, "eventId": 9999, "songName": "x"}, http.StatusBadRequest},
		{"unknown user", gin.H{"userId": 9999, "eventId": event.ID, "songName": "x"}, http.StatusBadRequest},
		{"missing song", gin.H{"userId": fan.ID, "eventId": event.ID}, http.StatusBadRequest},
		{"inactive event", gin.H{"userId": fan.ID, "eventId": closed.ID, "songName": "x"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := doJSON(t, router, "POST", "/api/request", tc.body)
		if w.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupDB(t)
	dj := models.User{Username: "mod_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)
	fan := models.User{Username: "mod_fan", Role: models.RoleAudience}
	mustCreate(t, db, &fan)
	stranger := models.User{Username: "mod_stranger", Role: models.RoleAudience}
	mustCreate(t, db, &stranger)
	event := models.Event{DJUserID: dj.ID, Name: "Mod", Slug: "mod"}
	mustCreate(t, db, &event)
	request := models.Request{UserID: fan.ID, EventID: event.ID, SongName: "Judge Me"}
	mustCreate(t, db, &request)

	// A stranger may not decide someone else's request.
	router := requestRouter(db, &stranger, &recorder{})
	w := doJSON(t, router, "PUT", fmt.Sprintf("/api/request/%d/status", request.ID), gin.H{"status": "Approved"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger status change: status %d, want 403", w.Code)
	}

	rec := &recorder{}
	router = requestRouter(db, &dj, rec)

	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/request/%d/status", request.ID), gin.H{"status": "Approved"})
	if w.Code != http.StatusOK {
		t.Fatalf("dj status change: status %d, body %s", w.Code, w.Body.String())
	}
	got := rec.last(t)
	if got.Name != "requestStatusUpdated" || got.Detail != models.StatusApproved {
		t.Errorf("broadcast = %+v, want requestStatusUpdated Approved", got)
	}

	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/request/%d/status", request.ID), gin.H{"status": "OnFire"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bogus status: status %d, want 400", w.Code)
	}

	w = doJSON(t, router, "PUT", "/api/request/99999/status", gin.H{"status": "Approved"})
	if w.Code != http.StatusNotFound {
		t.Errorf("absent request: status %d, want 404", w.Code)
	}
}

func TestDeleteRequestCascades(t *testing.T) {
	db := setupDB(t)
	dj := models.User{Username: "del_dj", Role: models.RoleDJ}
	mustCreate(t, db, &dj)
	fan := models.User{Username: "del_fan", Role: models.RoleAudience}
	mustCreate(t, db, &fan)
	event := models.Event{DJUserID: dj.ID, Name: "Del", Slug: "del"}
	mustCreate(t, db, &event)
	request := models.Request{UserID: fan.ID, EventID: event.ID, SongName: "Doomed"}
	mustCreate(t, db, &request)
	mustCreate(t, db, &models.Vote{UserID: fan.ID, RequestID: request.ID})
	mustCreate(t, db, &models.TrackMetadata{RequestID: request.ID, Source: "itunes", ExternalID: "42"})

	router := requestRouter(db, &dj, &recorder{})
	w := doJSON(t, router, "DELETE", fmt.Sprintf("/api/request/%d", request.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete request: status %d, body %s", w.Code, w.Body.String())
	}

	var votes, metadata int64
	db.Model(&models.Vote{}).Where("request_id = ?", request.ID).Count(&votes)
	db.Model(&models.TrackMetadata{}).Where("request_id = ?", request.ID).Count(&metadata)
	if votes != 0 || metadata != 0 {
		t.Errorf("cascade left %d votes and %d metadata rows", votes, metadata)
	}
}
