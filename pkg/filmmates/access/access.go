// Package access resolves a caller's effective role on a list.
//
// Every handler that reads or mutates a list's contents calls ResolveRole
// first and then applies its own policy (models.ListRole.CanRead, CanEdit,
// IsOwner).
package access

import (
	"errors"

	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"gorm.io/gorm"
)

// ResolveRole returns the role of userID on listID: owner if they created
// the list, the stored membership role if they hold one, RoleNone otherwise
// (including when the list does not exist).
func ResolveRole(db *gorm.DB, listID, userID string) (models.ListRole, error) {
	list, err := FindList(db, listID)
	if err != nil || list == nil {
		return models.RoleNone, err
	}
	return RoleOn(db, list, userID)
}

// RoleOn is ResolveRole for a list that is already loaded.
func RoleOn(db *gorm.DB, list *models.List, userID string) (models.ListRole, error) {
	if userID == "" {
		return models.RoleNone, nil
	}
	if list.OwnerID == userID {
		return models.RoleOwner, nil
	}

	var membership models.ListMember
	err := db.Where("list_id = ? AND user_id = ?", list.ID, userID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RoleNone, nil
	}
	if err != nil {
		return models.RoleNone, err
	}
	return membership.Role, nil
}

// FindList loads a list by id, returning nil without error when it is absent.
func FindList(db *gorm.DB, listID string) (*models.List, error) {
	var list models.List
	err := db.First(&list, "id = ?", listID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}
