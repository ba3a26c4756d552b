package models

import (
	"time"

	"gorm.io/gorm"
)

// ListRole is a caller's effective role on a list.
type ListRole string

const (
	RoleOwner  ListRole = "owner"
	RoleEditor ListRole = "editor"
	RoleViewer ListRole = "viewer"
	RoleNone   ListRole = ""
)

// CanRead reports whether the role may see the list and its contents.
func (r ListRole) CanRead() bool {
	return r == RoleOwner || r == RoleEditor || r == RoleViewer
}

// CanEdit reports whether the role may add or remove movies.
func (r ListRole) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// IsOwner reports whether the role has full rights on the list.
func (r ListRole) IsOwner() bool {
	return r == RoleOwner
}

// IsMemberRole reports whether r can be stored on a membership or invite.
// The owner never has a membership record.
func (r ListRole) IsMemberRole() bool {
	return r == RoleEditor || r == RoleViewer
}

// List is a named collection of movies owned by one user
type List struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `gorm:"not null;index" json:"owner_id"`

	// Relationships
	Members []ListMember `gorm:"foreignKey:ListID" json:"members,omitempty"`
	Movies  []ListMovie  `gorm:"foreignKey:ListID" json:"movies,omitempty"`
	Invites []Invite     `gorm:"foreignKey:ListID" json:"invites,omitempty"`
}

func (l *List) BeforeCreate(*gorm.DB) error {
	return assignID(&l.ID, prefixList)
}

// ListMember is a non-owner collaborator's role on a list.
// At most one row exists per (list, user).
type ListMember struct {
	ID       string    `gorm:"primaryKey;size:32" json:"id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
	ListID   string    `gorm:"not null;uniqueIndex:idx_list_user;index" json:"list_id"`
	UserID   string    `gorm:"not null;uniqueIndex:idx_list_user;index" json:"user_id"`
	Role     ListRole  `gorm:"type:varchar(20);not null" json:"role"`
}

func (m *ListMember) BeforeCreate(*gorm.DB) error {
	return assignID(&m.ID, prefixMember)
}

// Invite is a redeemable code granting Role on a list.
type Invite struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	ListID    string    `gorm:"not null;index" json:"list_id"`
	Role      ListRole  `gorm:"type:varchar(20);not null" json:"role"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
}

func (i *Invite) BeforeCreate(*gorm.DB) error {
	return assignID(&i.ID, prefixInvite)
}
