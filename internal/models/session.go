package models

import "time"

// Session is a per-(user, event) presence record. "Active" is derived at
// read time from LastSeen, never stored. The composite unique index keeps
// concurrent upserts from producing a second row for the same pair.
type Session struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	EventID      uint   `gorm:"not null;uniqueIndex:idx_sessions_event_user" json:"eventId"`
	Event        Event  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_sessions_event_user" json:"userId"`
	User         User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ClientIP     string `gorm:"size:64" json:"clientIp"`
	RequestCount int    `gorm:"default:0" json:"requestCount"`

	LastSeen  time.Time `gorm:"index" json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
}
