package models

import (
	"time"

	"gorm.io/gorm"
)

// Movie caches catalog metadata. At most one row exists per TMDB id; the row
// is refreshed every time the movie is added to a list.
type Movie struct {
	ID            string    `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TMDBID        int64     `gorm:"column:tmdb_id;uniqueIndex;not null" json:"tmdb_id"`
	Title         string    `gorm:"not null" json:"title"`
	OriginalTitle *string   `json:"original_title,omitempty"`
	Overview      *string   `json:"overview,omitempty"`
	PosterPath    *string   `json:"poster_path,omitempty"`
	BackdropPath  *string   `json:"backdrop_path,omitempty"`
	ReleaseDate   *string   `json:"release_date,omitempty"`
	VoteAverage   *float64  `json:"vote_average,omitempty"`
	GenreIDs      []int     `gorm:"serializer:json" json:"genre_ids,omitempty"`
	Extra         *string   `json:"extra,omitempty"` // raw JSON with other catalog fields
}

func (m *Movie) BeforeCreate(*gorm.DB) error {
	return assignID(&m.ID, prefixMovie)
}

// ListMovie attaches a movie to a list with a watched flag and a note.
// At most one row exists per (list, movie).
type ListMovie struct {
	ID      string    `gorm:"primaryKey;size:32" json:"id"`
	AddedAt time.Time `gorm:"autoCreateTime;index" json:"added_at"`
	ListID  string    `gorm:"not null;uniqueIndex:idx_list_movie;index" json:"list_id"`
	MovieID string    `gorm:"not null;uniqueIndex:idx_list_movie" json:"movie_id"`
	AddedBy string    `gorm:"not null" json:"added_by"`
	Note    *string   `json:"note,omitempty"`
	Watched bool      `gorm:"not null" json:"watched"`

	// Relationships
	Movie Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
}

func (lm *ListMovie) BeforeCreate(*gorm.DB) error {
	return assignID(&lm.ID, prefixListMovie)
}
