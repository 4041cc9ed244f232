package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account record: identity plus credential.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName    string    `json:"firstName" gorm:"size:255;not null"`
	LastName     string    `json:"lastName" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName is the display name used in views.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
