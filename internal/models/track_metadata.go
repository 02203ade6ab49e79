package models

import "time"

// TrackMetadata is optional enrichment for a request, filled in
// asynchronously from an external catalog lookup. One-to-one with Request.
type TrackMetadata struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RequestID  uint   `gorm:"uniqueIndex;not null" json:"requestId"`
	Source     string `gorm:"size:32" json:"source"` // e.g. "itunes"
	ExternalID string `gorm:"size:64" json:"externalId"`
	DurationMS int    `json:"durationMs"`
	ArtworkURL string `gorm:"size:512" json:"artworkUrl"`

	CreatedAt time.Time `json:"createdAt"`
}
