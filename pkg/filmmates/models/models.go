package models

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// ID prefixes, one per table.
const (
	prefixUser      = "usr"
	prefixList      = "lst"
	prefixMember    = "mem"
	prefixInvite    = "inv"
	prefixMovie     = "mov"
	prefixListMovie = "lmv"
	prefixAPIKey    = "key"
)

// NewID creates a prefixed unique ID, e.g. "lst-V1StGXR8_Z5jdHi6B-myT".
func NewID(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// assignID fills *id on create unless the caller already chose one.
func assignID(id *string, prefix string) error {
	if *id != "" {
		return nil
	}
	generated, err := NewID(prefix)
	if err != nil {
		return err
	}
	*id = generated
	return nil
}

// AllModels returns all models for migration
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&List{},
		&ListMember{},
		&Invite{},
		&Movie{},
		&ListMovie{},
		&APIKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
