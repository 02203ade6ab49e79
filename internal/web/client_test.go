package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/event", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":1,"name":"Disco Night","slug":"disco-night","isActive":true}]}`)
	})
	mux.HandleFunc("/api/event/slug/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/event/slug/disco-night" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id":1,"name":"Disco Night","slug":"disco-night","isActive":true}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestActiveEvents(t *testing.T) {
	api := NewAPIClient(fakeAPI(t).URL)

	events, err := api.ActiveEvents()
	if err != nil {
		t.Fatalf("ActiveEvents: %v", err)
	}
	if len(events) != 1 || events[0].Slug != "disco-night" {
		t.Errorf("events = %+v", events)
	}
}

func TestEventBySlug(t *testing.T) {
	api := NewAPIClient(fakeAPI(t).URL)

	event, err := api.EventBySlug("disco-night")
	if err != nil {
		t.Fatalf("EventBySlug: %v", err)
	}
	if event.Name != "Disco Night" {
		t.Errorf("event = %+v", event)
	}

	if _, err := api.EventBySlug("no-such"); err != ErrNotFound {
		t.Errorf("missing slug error = %v, want ErrNotFound", err)
	}
}

func TestHealthy(t *testing.T) {
	api := NewAPIClient(fakeAPI(t).URL)
	if !api.Healthy() {
		t.Error("healthy API reported unhealthy")
	}

	down := NewAPIClient("http://127.0.0.1:1")
	if down.Healthy() {
		t.Error("unreachable API reported healthy")
	}
}
