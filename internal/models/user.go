package models

import "time"

// Roles a user can hold. DJs own events and moderate requests;
// everyone else is an audience member.
const (
	RoleAudience = "audience"
	RoleDJ       = "dj"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	PasswordHash string    `gorm:"size:255" json:"-"` // Hidden from JSON
	Role         string    `gorm:"type:varchar(20);default:'audience';index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// A DJ's events survive nothing: deleting a user who still hosts
	// events is rejected at the store level (RESTRICT on Event.DJUserID).
	HostedEvents []Event   `gorm:"foreignKey:DJUserID" json:"-"`
	Requests     []Request `json:"-"`
	Votes        []Vote    `json:"-"`
	Sessions     []Session `json:"-"`
}

// IsDJ reports whether the user holds the privileged role.
func (u *User) IsDJ() bool {
	return u.Role == RoleDJ
}
