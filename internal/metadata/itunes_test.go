package metadata

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	database "crowdqr/internal/db"
	"crowdqr/internal/models"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	client, err := database.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	client.AutoMigrate()
	return client.DB
}

func fakeCatalog(t *testing.T, results int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("media"); got != "music" {
			t.Errorf("media = %q, want music", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("limit = %q, want 1", got)
		}
		if results == 0 {
			fmt.Fprint(w, `{"resultCount":0,"results":[]}`)
			return
		}
		fmt.Fprint(w, `{"resultCount":1,"results":[{"trackId":120954025,"trackTimeMillis":285787,"artworkUrl100":"https://example.com/cover.jpg"}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupMapsResult(t *testing.T) {
	srv := fakeCatalog(t, 1)
	e := NewEnricherWithBaseURL(srv.URL)

	meta, err := e.Lookup("Stayin' Alive", "Bee Gees")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if meta.Source != "itunes" {
		t.Errorf("source = %q", meta.Source)
	}
	if meta.ExternalID != "120954025" {
		t.Errorf("external id = %q", meta.ExternalID)
	}
	if meta.DurationMS != 285787 {
		t.Errorf("duration = %d", meta.DurationMS)
	}
	if meta.ArtworkURL != "https://example.com/cover.jpg" {
		t.Errorf("artwork = %q", meta.ArtworkURL)
	}
}

func TestLookupNoResults(t *testing.T) {
	srv := fakeCatalog(t, 0)
	e := NewEnricherWithBaseURL(srv.URL)

	if _, err := e.Lookup("definitely not a song", ""); err == nil {
		t.Fatal("expected an error for an empty result set")
	}
}

func TestEnrichRequestStoresOnce(t *testing.T) {
	gdb := setupDB(t)

	dj := models.User{Username: "enrich_dj", Role: models.RoleDJ}
	if err := gdb.Create(&dj).Error; err != nil {
		t.Fatal(err)
	}
	event := models.Event{DJUserID: dj.ID, Name: "Enrich", Slug: "enrich"}
	if err := gdb.Create(&event).Error; err != nil {
		t.Fatal(err)
	}
	request := models.Request{UserID: dj.ID, EventID: event.ID, SongName: "Stayin' Alive"}
	if err := gdb.Create(&request).Error; err != nil {
		t.Fatal(err)
	}

	srv := fakeCatalog(t, 1)
	e := NewEnricherWithBaseURL(srv.URL)

	e.EnrichRequest(gdb, request.ID, request.SongName, "")
	// A second enrichment of the same request must not duplicate the row.
	e.EnrichRequest(gdb, request.ID, request.SongName, "")

	var rows []models.TrackMetadata
	if err := gdb.Where("request_id = ?", request.ID).Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("metadata rows = %d, want 1", len(rows))
	}
	if rows[0].ExternalID != "120954025" {
		t.Errorf("external id = %q", rows[0].ExternalID)
	}
}

func TestEnrichRequestSwallowsLookupFailure(t *testing.T) {
	gdb := setupDB(t)

	srv := fakeCatalog(t, 0)
	e := NewEnricherWithBaseURL(srv.URL)

	// Must not panic and must not write anything.
	e.EnrichRequest(gdb, 1, "nothing", "")

	var count int64
	gdb.Model(&models.TrackMetadata{}).Count(&count)
	if count != 0 {
		t.Errorf("metadata rows = %d, want 0", count)
	}
}
