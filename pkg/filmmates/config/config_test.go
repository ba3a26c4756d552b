package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "FILMMATES_PORT", "SITE_URL", "FILMMATES_DB_PATH", "JWT_SECRET",
		"TMDB_API_KEY", "TMDB_BASE_URL", "TMDB_LANGUAGE", "LOG_LEVEL", "TOKEN_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "filmmates.db", cfg.Database.Path)
	assert.Equal(t, "ru-RU", cfg.TMDB.Language)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Empty(t, cfg.TMDB.APIKey)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL.Duration)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "filmmates.toml")
	content := `
[server]
port = "9090"
site_url = "https://films.example.com"

[database]
path = "/var/lib/filmmates/data.db"

[auth]
token_ttl = "2h"

[tmdb]
api_key = "from-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("TMDB_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://films.example.com", cfg.Server.SiteURL)
	assert.Equal(t, "/var/lib/filmmates/data.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport ="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.Path = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Auth.TokenTTL = Duration{}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
