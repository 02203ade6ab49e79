package models

import "time"

// Request lifecycle. A request is only ever mutated by moving it from
// Pending to Approved or Rejected; song/artist are immutable after create.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// ValidStatus reports whether s is one of the three request states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Request is an audience member's song nomination awaiting DJ disposition.
type Request struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	UserID     uint    `gorm:"index;not null" json:"userId"`
	User       User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EventID    uint    `gorm:"index;not null" json:"eventId"`
	Event      Event   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongName   string  `gorm:"not null;size:255" json:"songName"`
	ArtistName string  `gorm:"size:255" json:"artistName,omitempty"`
	Status     string  `gorm:"type:varchar(20);default:'Pending';index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`

	Votes    []Vote         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Metadata *TrackMetadata `gorm:"constraint:OnDelete:CASCADE" json:"metadata,omitempty"`
}
