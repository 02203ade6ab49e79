package database

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crowdqr/internal/models"
)

// SeedDemo populates a small demo dataset: one DJ with an active event,
// a handful of audience members, requests and votes. It is only ever
// invoked explicitly (cmd/api --seed, or tests) — never at plain startup.
func SeedDemo(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)

	dj := models.User{Username: "dj_demo", Role: models.RoleDJ, PasswordHash: string(hash)}
	upsertUser(db, &dj)

	audience := []models.User{
		{Username: "alice", Role: models.RoleAudience},
		{Username: "bob", Role: models.RoleAudience},
		{Username: "carol", Role: models.RoleAudience},
	}
	for i := range audience {
		upsertUser(db, &audience[i])
	}

	event := models.Event{
		DJUserID: dj.ID,
		Name:     "Saturday Warehouse",
		Slug:     "saturday-warehouse",
		IsActive: true,
	}
	db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&event)
	if event.ID == 0 {
		db.Where("slug = ?", event.Slug).First(&event)
	}

	requests := []models.Request{
		{UserID: audience[0].ID, EventID: event.ID, SongName: "Blue Monday", ArtistName: "New Order"},
		{UserID: audience[1].ID, EventID: event.ID, SongName: "Around the World", ArtistName: "Daft Punk"},
		{UserID: audience[2].ID, EventID: event.ID, SongName: "Windowlicker", ArtistName: "Aphex Twin"},
	}
	for i := range requests {
		var existing models.Request
		err := db.Where("event_id = ? AND user_id = ? AND song_name = ?",
			requests[i].EventID, requests[i].UserID, requests[i].SongName).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			db.Create(&requests[i])
		} else {
			requests[i] = existing
		}
	}

	// Everyone votes for the first request, one vote for the second.
	votes := []models.Vote{
		{UserID: audience[0].ID, RequestID: requests[0].ID},
		{UserID: audience[1].ID, RequestID: requests[0].ID},
		{UserID: audience[2].ID, RequestID: requests[0].ID},
		{UserID: audience[0].ID, RequestID: requests[1].ID},
	}
	for i := range votes {
		db.Clauses(clause.OnConflict{DoNothing: true}).Create(&votes[i])
	}

	now := time.Now()
	for _, u := range audience {
		session := models.Session{
			EventID:  event.ID,
			UserID:   u.ID,
			ClientIP: "127.0.0.1",
			LastSeen: now,
		}
		db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": now}),
		}).Create(&session)
	}

	log.Printf("🌱 Seeded demo event %q (id=%d)", event.Slug, event.ID)
}

func upsertUser(db *gorm.DB, u *models.User) {
	db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(u)
	if u.ID == 0 {
		db.Where("username = ?", u.Username).First(u)
	}
}
