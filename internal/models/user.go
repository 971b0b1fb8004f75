package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // required for pq.StringArray
	"gorm.io/gorm"
)

// User is a row in the persistent user directory. The chat core only ever
// needs lookup-by-id; profile editing lives in the surrounding API layer.
type User struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	FavoriteTeams pq.StringArray `gorm:"type:text[]" json:"favorite_teams"`
	// Guest marks identities minted by the guest-token endpoint rather than
	// registered accounts.
	Guest bool `json:"guest"`
}

// BeforeCreate is a GORM hook that assigns a UUID when no id was set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
