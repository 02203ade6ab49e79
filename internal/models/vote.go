package models

import "time"

// Vote endorses a request. The composite unique index is the concurrency
// mechanism for the one-vote-per-user-per-request rule: racing creates
// resolve at the store, not in application code.
type Vote struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_votes_user_request" json:"userId"`
	User      User    `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	RequestID uint    `gorm:"not null;uniqueIndex:idx_votes_user_request;index" json:"requestId"`
	Request   Request `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}
