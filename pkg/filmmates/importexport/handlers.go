package importexport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/access"
	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/listmovies"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/belowevolve/filmmates/pkg/filmmates/movies"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ExportMovie is one list entry in an export document
type ExportMovie struct {
	movies.Metadata
	Note    *string   `json:"note,omitempty"`
	Watched bool      `json:"watched"`
	AddedAt time.Time `json:"added_at"`
}

// ExportDocument is a portable snapshot of a list
type ExportDocument struct {
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	ExportedAt  time.Time     `json:"exported_at"`
	Movies      []ExportMovie `json:"movies"`
}

// ImportMovie is one entry of an import request. Unlike the add-to-list
// request, tmdb_id and title are checked per entry so one bad entry does
// not reject the whole document.
type ImportMovie struct {
	TMDBID        int64    `json:"tmdb_id"`
	Title         string   `json:"title"`
	OriginalTitle *string  `json:"original_title,omitempty"`
	Overview      *string  `json:"overview,omitempty"`
	PosterPath    *string  `json:"poster_path,omitempty"`
	BackdropPath  *string  `json:"backdrop_path,omitempty"`
	ReleaseDate   *string  `json:"release_date,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	GenreIDs      []int    `json:"genre_ids,omitempty"`
	Extra         *string  `json:"extra,omitempty"`
	Note          *string  `json:"note,omitempty"`
	Watched       bool     `json:"watched"`
}

func (m ImportMovie) metadata() movies.Metadata {
	return movies.Metadata{
		TMDBID:        m.TMDBID,
		Title:         strings.TrimSpace(m.Title),
		OriginalTitle: m.OriginalTitle,
		Overview:      m.Overview,
		PosterPath:    m.PosterPath,
		BackdropPath:  m.BackdropPath,
		ReleaseDate:   m.ReleaseDate,
		VoteAverage:   m.VoteAverage,
		GenreIDs:      m.GenreIDs,
		Extra:         m.Extra,
	}
}

// ImportRequest represents an import request. It accepts an export
// document as-is; only the movies are read.
type ImportRequest struct {
	Movies []ImportMovie `json:"movies" binding:"required"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Export returns the list and its movies as a portable document (any role)
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	list, err := access.FindList(h.db, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}
	role, err := access.RoleOn(h.db, list, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export list"})
		return
	}
	if !role.CanRead() {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	var entries []models.ListMovie
	if err := h.db.Preload("Movie").Where("list_id = ?", list.ID).Order("added_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movies"})
		return
	}

	doc := ExportDocument{
		Name:        list.Name,
		Description: list.Description,
		ExportedAt:  time.Now().UTC(),
		Movies:      make([]ExportMovie, len(entries)),
	}
	for i, lm := range entries {
		m := lm.Movie
		doc.Movies[i] = ExportMovie{
			Metadata: movies.Metadata{
				TMDBID:        m.TMDBID,
				Title:         m.Title,
				OriginalTitle: m.OriginalTitle,
				Overview:      m.Overview,
				PosterPath:    m.PosterPath,
				BackdropPath:  m.BackdropPath,
				ReleaseDate:   m.ReleaseDate,
				VoteAverage:   m.VoteAverage,
				GenreIDs:      m.GenreIDs,
				Extra:         m.Extra,
			},
			Note:    lm.Note,
			Watched: lm.Watched,
			AddedAt: lm.AddedAt,
		}
	}

	// Set content disposition for download
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename=filmmates-"+list.ID+".json")
	}

	c.JSON(http.StatusOK, doc)
}

// Import adds the movies of a document to the list (owner or editor).
// Movies already on the list are skipped and keep their state.
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := access.FindList(h.db, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}
	role, err := access.RoleOn(h.db, list, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import"})
		return
	}
	if !role.CanEdit() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to add movies to this list"})
		return
	}

	result := ImportResult{
		Errors: []string{},
	}

	for i, entry := range req.Movies {
		md := entry.metadata()
		if md.TMDBID <= 0 || md.Title == "" {
			result.Errors = append(result.Errors, "movie "+strconv.Itoa(i)+": tmdb_id and title are required")
			result.Skipped++
			continue
		}

		var created bool
		err := h.db.Transaction(func(tx *gorm.DB) error {
			movieID, err := movies.EnsureMovie(tx, md)
			if err != nil {
				return err
			}
			_, created, err = listmovies.Attach(tx, list.ID, movieID, userID, entry.Note, entry.Watched)
			return err
		})
		if err != nil {
			result.Errors = append(result.Errors, "movie "+strconv.Itoa(i)+": "+err.Error())
			result.Skipped++
			continue
		}

		if created {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers import/export routes nested under /lists
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/export", h.Export)
	rg.POST("/:id/import", h.Import)
}
