// Package movies keeps the local movie cache in step with the catalog and
// exposes catalog search over HTTP.
package movies

import (
	"errors"

	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/belowevolve/filmmates/pkg/filmmates/tmdb"
	"gorm.io/gorm"
)

// Metadata is the catalog description of a movie as supplied by clients
type Metadata struct {
	TMDBID        int64    `json:"tmdb_id" binding:"required,gt=0"`
	Title         string   `json:"title" binding:"required"`
	OriginalTitle *string  `json:"original_title,omitempty"`
	Overview      *string  `json:"overview,omitempty"`
	PosterPath    *string  `json:"poster_path,omitempty"`
	BackdropPath  *string  `json:"backdrop_path,omitempty"`
	ReleaseDate   *string  `json:"release_date,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	GenreIDs      []int    `json:"genre_ids,omitempty"`
	Extra         *string  `json:"extra,omitempty"`
}

// MetadataFromCatalog converts a catalog search result
func MetadataFromCatalog(m tmdb.Movie) Metadata {
	return Metadata{
		TMDBID:        m.ID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Overview:      m.Overview,
		PosterPath:    m.PosterPath,
		BackdropPath:  m.BackdropPath,
		ReleaseDate:   m.ReleaseDate,
		VoteAverage:   m.VoteAverage,
		GenreIDs:      m.GenreIDs,
	}
}

func (md Metadata) apply(m *models.Movie) {
	m.Title = md.Title
	m.OriginalTitle = md.OriginalTitle
	m.Overview = md.Overview
	m.PosterPath = md.PosterPath
	m.BackdropPath = md.BackdropPath
	m.ReleaseDate = md.ReleaseDate
	m.VoteAverage = md.VoteAverage
	m.GenreIDs = md.GenreIDs
	m.Extra = md.Extra
}

// EnsureMovie returns the id of the cached movie for md.TMDBID, inserting it
// when missing. An existing row is overwritten with md, so fields absent
// from md are cleared. Run it inside the caller's transaction.
func EnsureMovie(tx *gorm.DB, md Metadata) (string, error) {
	var existing models.Movie
	err := tx.Where("tmdb_id = ?", md.TMDBID).First(&existing).Error
	if err == nil {
		md.apply(&existing)
		if err := tx.Save(&existing).Error; err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	movie := models.Movie{TMDBID: md.TMDBID}
	md.apply(&movie)
	if err := tx.Create(&movie).Error; err != nil {
		return "", err
	}
	return movie.ID, nil
}
