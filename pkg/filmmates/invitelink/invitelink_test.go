package invitelink

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, "https://filmmates.example/")
	handler.RegisterRoutes(r)
	return r
}

func TestRedirect(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	list := models.List{Name: "Weekend", OwnerID: "usr-alice"}
	db.Create(&list)
	db.Create(&models.Invite{Code: "AB12CD34", ListID: list.ID, Role: models.RoleViewer, CreatedBy: "usr-alice"})

	req, _ := http.NewRequest("GET", "/i/AB12CD34", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", resp.Code)
	}
	if location := resp.Header().Get("Location"); location != "https://filmmates.example/invite/AB12CD34" {
		t.Errorf("Unexpected redirect target %s", location)
	}
}

func TestRedirectNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	// Invite whose list is gone
	db.Create(&models.Invite{Code: "ORPHAN22", ListID: "lst-gone", Role: models.RoleViewer, CreatedBy: "usr-alice"})

	tests := []struct {
		name string
		path string
	}{
		{"unknown code", "/i/NOPENOPE"},
		{"deleted list", "/i/ORPHAN22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tt.path, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != http.StatusNotFound {
				t.Errorf("Expected status 404, got %d", resp.Code)
			}
		})
	}
}
