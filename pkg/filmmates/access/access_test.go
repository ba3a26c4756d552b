package access

import (
	"testing"

	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func TestResolveRole(t *testing.T) {
	db := setupTestDB(t)

	list := models.List{Name: "Weekend", OwnerID: "usr-owner"}
	require.NoError(t, db.Create(&list).Error)
	require.NoError(t, db.Create(&models.ListMember{ListID: list.ID, UserID: "usr-editor", Role: models.RoleEditor}).Error)
	require.NoError(t, db.Create(&models.ListMember{ListID: list.ID, UserID: "usr-viewer", Role: models.RoleViewer}).Error)

	other := models.List{Name: "Other", OwnerID: "usr-stranger"}
	require.NoError(t, db.Create(&other).Error)

	tests := []struct {
		name   string
		listID string
		userID string
		want   models.ListRole
	}{
		{"owner", list.ID, "usr-owner", models.RoleOwner},
		{"editor membership", list.ID, "usr-editor", models.RoleEditor},
		{"viewer membership", list.ID, "usr-viewer", models.RoleViewer},
		{"stranger", list.ID, "usr-stranger", models.RoleNone},
		{"owner of another list", other.ID, "usr-owner", models.RoleNone},
		{"missing list", "lst-missing", "usr-owner", models.RoleNone},
		{"anonymous", list.ID, "", models.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ResolveRole(db, tt.listID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestResolveRoleOwnerWinsOverMembership(t *testing.T) {
	db := setupTestDB(t)

	list := models.List{Name: "Weekend", OwnerID: "usr-owner"}
	require.NoError(t, db.Create(&list).Error)
	// Not something the app ever writes, but ownership must take precedence.
	require.NoError(t, db.Create(&models.ListMember{ListID: list.ID, UserID: "usr-owner", Role: models.RoleViewer}).Error)

	role, err := ResolveRole(db, list.ID, "usr-owner")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)
}

func TestFindListMissing(t *testing.T) {
	db := setupTestDB(t)

	list, err := FindList(db, "lst-nope")
	require.NoError(t, err)
	assert.Nil(t, list)
}
