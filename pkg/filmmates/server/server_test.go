package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/database"
	"github.com/belowevolve/filmmates/pkg/filmmates/logging"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/belowevolve/filmmates/pkg/filmmates/tmdb"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:", logging.Discard())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	router := NewRouter(Deps{
		DB:      db,
		Tokens:  auth.NewTokens("test-secret", time.Hour),
		Catalog: tmdb.New(tmdb.Options{}, logging.Discard()),
		Logger:  logging.Discard(),
		SiteURL: "https://filmmates.example",
	})
	return &testServer{t: t, db: db, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	buf := &bytes.Buffer{}
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(s.t, err)
		buf = bytes.NewBuffer(jsonBody)
	}
	req, err := http.NewRequest(method, path, buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func (s *testServer) decode(resp *httptest.ResponseRecorder, v interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(resp.Body.Bytes(), v), resp.Body.String())
}

func (s *testServer) register(email, name string) string {
	s.t.Helper()
	resp := s.do("POST", "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     name,
	})
	require.Equal(s.t, http.StatusCreated, resp.Code, resp.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	s.decode(resp, &body)
	return body.Token
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	assert.Equal(t, http.StatusOK, s.do("GET", "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/health", "", nil).Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{"/api/lists", "/api/api-keys", "/api/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, s.do("GET", path, "", nil).Code, path)
	}
}

func TestSharedListScenario(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register("alice@example.com", "Alice")
	bob := s.register("bob@example.com", "Bob")

	// Alice creates "Weekend"
	resp := s.do("POST", "/api/lists", alice, map[string]string{"name": "Weekend"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var list struct {
		ID string `json:"id"`
	}
	s.decode(resp, &list)

	// ...and invites viewers
	resp = s.do("POST", "/api/lists/"+list.ID+"/invites", alice, map[string]string{"role": "viewer"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var invite struct {
		Code string `json:"code"`
	}
	s.decode(resp, &invite)
	require.Len(t, invite.Code, 8)

	// The short link points at the web app
	resp = s.do("GET", "/i/"+invite.Code, "", nil)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "https://filmmates.example/invite/"+invite.Code, resp.Header().Get("Location"))

	// Bob redeems twice
	for i := 0; i < 2; i++ {
		resp = s.do("POST", "/api/invites/"+invite.Code+"/accept", bob, nil)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	// Bob sees the list as a viewer
	resp = s.do("GET", "/api/lists", bob, nil)
	var bobLists []struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	s.decode(resp, &bobLists)
	require.Len(t, bobLists, 1)
	assert.Equal(t, list.ID, bobLists[0].ID)
	assert.Equal(t, "viewer", bobLists[0].Role)

	movie := map[string]interface{}{"tmdb_id": 603, "title": "The Matrix"}

	// Viewers cannot add movies
	resp = s.do("POST", "/api/lists/"+list.ID+"/movies", bob, movie)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = s.do("GET", "/api/lists/"+list.ID, alice, nil)
	var detail struct {
		MembersCount int64 `json:"members_count"`
		MoviesCount  int64 `json:"movies_count"`
	}
	s.decode(resp, &detail)
	assert.Equal(t, int64(2), detail.MembersCount)
	assert.Equal(t, int64(0), detail.MoviesCount)

	// Alice adds it, Bob marks it watched
	resp = s.do("POST", "/api/lists/"+list.ID+"/movies", alice, movie)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var entry struct {
		ID string `json:"id"`
	}
	s.decode(resp, &entry)

	resp = s.do("POST", "/api/list-movies/"+entry.ID+"/toggle-watched", bob, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = s.do("GET", "/api/lists/"+list.ID, bob, nil)
	s.decode(resp, &detail)
	assert.Equal(t, int64(1), detail.MoviesCount)

	// Deleting the list takes its members, invites and entries with it
	resp = s.do("DELETE", "/api/lists/"+list.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = s.do("DELETE", "/api/lists/"+list.ID, alice, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	for _, model := range []interface{}{&models.ListMember{}, &models.Invite{}, &models.ListMovie{}} {
		var count int64
		s.db.Model(model).Count(&count)
		assert.Zero(t, count)
	}

	resp = s.do("GET", "/i/"+invite.Code, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = s.do("GET", "/api/lists", bob, nil)
	assert.Equal(t, "[]", resp.Body.String())
}

func TestAPIKeyAccessToLists(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register("alice@example.com", "Alice")

	resp := s.do("POST", "/api/api-keys", alice, map[string]string{"description": "cli"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var key struct {
		Key string `json:"key"`
	}
	s.decode(resp, &key)

	resp = s.do("POST", "/api/lists", key.Key, map[string]string{"name": "From the CLI"})
	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// Key management itself needs a JWT
	resp = s.do("GET", "/api/api-keys", key.Key, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCatalogUnconfigured(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do("GET", "/api/movies/search?query=matrix", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	resp = s.do("GET", "/api/movies/popular", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
