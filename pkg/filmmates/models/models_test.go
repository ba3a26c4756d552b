package models

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	// Verify tables exist by checking if we can query them
	tables := []string{"users", "lists", "list_members", "invites", "movies", "list_movies", "api_keys"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestIDsArePrefixed(t *testing.T) {
	db := setupTestDB(t)

	user := User{Email: "test@example.com", PasswordHash: "hash", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if !strings.HasPrefix(user.ID, "usr-") {
		t.Errorf("Expected user ID to start with usr-, got %s", user.ID)
	}

	list := List{Name: "Weekend", OwnerID: user.ID}
	if err := db.Create(&list).Error; err != nil {
		t.Fatalf("Failed to create list: %v", err)
	}
	if !strings.HasPrefix(list.ID, "lst-") {
		t.Errorf("Expected list ID to start with lst-, got %s", list.ID)
	}
	if len(list.ID) != len("lst-")+21 {
		t.Errorf("Expected 21 character nanoid, got %s", list.ID)
	}
}

func TestUserEmailUnique(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&User{Email: "test@example.com", PasswordHash: "hash", Name: "One"})
	result := db.Create(&User{Email: "test@example.com", PasswordHash: "hash", Name: "Two"})
	if result.Error == nil {
		t.Error("Expected error when creating user with duplicate email")
	}
}

func TestMembershipUniquePerListAndUser(t *testing.T) {
	db := setupTestDB(t)

	list := List{Name: "Weekend", OwnerID: "usr-owner"}
	db.Create(&list)

	if err := db.Create(&ListMember{ListID: list.ID, UserID: "usr-guest", Role: RoleViewer}).Error; err != nil {
		t.Fatalf("Failed to create membership: %v", err)
	}
	if err := db.Create(&ListMember{ListID: list.ID, UserID: "usr-guest", Role: RoleEditor}).Error; err == nil {
		t.Error("Expected error when creating a second membership for the same user")
	}
}

func TestMovieTMDBIDUnique(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&Movie{TMDBID: 603, Title: "The Matrix"})
	if err := db.Create(&Movie{TMDBID: 603, Title: "Matrix"}).Error; err == nil {
		t.Error("Expected error when creating movie with duplicate tmdb id")
	}
}

func TestMovieGenreIDsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	movie := Movie{TMDBID: 603, Title: "The Matrix", GenreIDs: []int{28, 878}}
	db.Create(&movie)

	var loaded Movie
	db.First(&loaded, "id = ?", movie.ID)
	if len(loaded.GenreIDs) != 2 || loaded.GenreIDs[1] != 878 {
		t.Errorf("Expected genre ids [28 878], got %v", loaded.GenreIDs)
	}
}

func TestListMovieUniquePerListAndMovie(t *testing.T) {
	db := setupTestDB(t)

	list := List{Name: "Weekend", OwnerID: "usr-owner"}
	db.Create(&list)
	movie := Movie{TMDBID: 603, Title: "The Matrix"}
	db.Create(&movie)

	if err := db.Create(&ListMovie{ListID: list.ID, MovieID: movie.ID, AddedBy: "usr-owner"}).Error; err != nil {
		t.Fatalf("Failed to attach movie: %v", err)
	}
	if err := db.Create(&ListMovie{ListID: list.ID, MovieID: movie.ID, AddedBy: "usr-owner"}).Error; err == nil {
		t.Error("Expected error when attaching the same movie twice")
	}

	var loaded ListMovie
	db.Preload("Movie").First(&loaded, "list_id = ?", list.ID)
	if loaded.Movie.Title != "The Matrix" {
		t.Errorf("Expected preloaded movie, got %+v", loaded.Movie)
	}
}

func TestListRolePolicy(t *testing.T) {
	tests := []struct {
		role                  ListRole
		read, edit, own, memb bool
	}{
		{RoleOwner, true, true, true, false},
		{RoleEditor, true, true, false, true},
		{RoleViewer, true, false, false, true},
		{RoleNone, false, false, false, false},
	}
	for _, tt := range tests {
		if tt.role.CanRead() != tt.read || tt.role.CanEdit() != tt.edit ||
			tt.role.IsOwner() != tt.own || tt.role.IsMemberRole() != tt.memb {
			t.Errorf("Unexpected policy for role %q", tt.role)
		}
	}
}
