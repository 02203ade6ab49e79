package models

import "time"

// Event is one DJ-hosted show that the audience submits requests against.
type Event struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	DJUserID uint   `gorm:"index;not null" json:"djUserId"`
	DJ       User   `gorm:"foreignKey:DJUserID;constraint:OnDelete:RESTRICT" json:"-"`
	Name     string `gorm:"not null;size:255" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Requests []Request `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Sessions []Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
