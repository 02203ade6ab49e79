package metadata

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crowdqr/internal/models"
)

const itunesSearchURL = "https://itunes.apple.com/search"

// Enricher looks song requests up in the iTunes Search API and attaches
// track metadata (external id, duration, artwork) to them.
type Enricher struct {
	client  *http.Client
	baseURL string
}

func NewEnricher() *Enricher {
	return &Enricher{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: itunesSearchURL,
	}
}

// NewEnricherWithBaseURL exists for tests pointing at a fake server.
func NewEnricherWithBaseURL(baseURL string) *Enricher {
	e := NewEnricher()
	e.baseURL = baseURL
	return e
}

// Lookup queries iTunes for the best match of song (+ optional artist).
func (e *Enricher) Lookup(song, artist string) (*models.TrackMetadata, error) {
	term := strings.TrimSpace(song + " " + artist)

	u, _ := url.Parse(e.baseURL)
	q := u.Query()
	q.Set("term", term)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	resp, err := e.client.Get(u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result struct {
		ResultCount int `json:"resultCount"`
		Results     []struct {
			TrackID         int64  `json:"trackId"`
			TrackTimeMillis int    `json:"trackTimeMillis"`
			ArtworkURL      string `json:"artworkUrl100"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.ResultCount == 0 {
		return nil, fmt.Errorf("no results for '%s'", term)
	}

	item := result.Results[0]
	return &models.TrackMetadata{
		Source:     "itunes",
		ExternalID: strconv.FormatInt(item.TrackID, 10),
		DurationMS: item.TrackTimeMillis,
		ArtworkURL: item.ArtworkURL,
	}, nil
}

// EnrichRequest runs a lookup for one request and stores the result.
// Everything here is best-effort: the request already exists, and a
// failed or empty lookup must never surface to the requester.
func (e *Enricher) EnrichRequest(db *gorm.DB, requestID uint, song, artist string) {
	meta, err := e.Lookup(song, artist)
	if err != nil {
		slog.Info("catalog lookup skipped", "request", requestID, "error", err)
		return
	}

	meta.RequestID = requestID
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		DoNothing: true,
	}).Create(meta).Error
	if err != nil {
		slog.Error("failed to store track metadata", "request", requestID, "error", err)
	}
}
