package database

import (
	"path/filepath"
	"testing"

	"github.com/belowevolve/filmmates/pkg/filmmates/logging"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileDatabaseEnablesForeignKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), logging.Discard())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:", logging.Discard())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&models.List{}))
}
