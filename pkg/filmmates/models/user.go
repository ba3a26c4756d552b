package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a local account. Users own lists and hold memberships on others.
type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`

	APIKeys []APIKey `gorm:"foreignKey:UserID" json:"api_keys,omitempty"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	return assignID(&u.ID, prefixUser)
}

// APIKey represents an API key for programmatic access
type APIKey struct {
	ID          string     `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      string     `gorm:"not null;index" json:"user_id"`
	KeyHash     string     `gorm:"uniqueIndex;not null" json:"-"`
	KeyPrefix   string     `gorm:"not null" json:"key_prefix"` // First few chars for identification
	Description string     `json:"description"`
	LastUsedAt  *time.Time `json:"last_used_at"`
}

func (k *APIKey) BeforeCreate(*gorm.DB) error {
	return assignID(&k.ID, prefixAPIKey)
}
