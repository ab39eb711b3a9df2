package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name string `json:"name"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Bumped to invalidate outstanding tokens (logout, password change)
	TokenVersion int `gorm:"default:0" json:"-"`

	// Relations
	Memberships []Member `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
