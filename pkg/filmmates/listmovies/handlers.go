package listmovies

import (
	"errors"
	"net/http"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/access"
	"github.com/belowevolve/filmmates/pkg/filmmates/apperr"
	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/belowevolve/filmmates/pkg/filmmates/movies"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles requests for movies attached to lists
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new list movies handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// AddToListRequest carries the catalog metadata of the movie plus an optional note
type AddToListRequest struct {
	movies.Metadata
	Note *string `json:"note"`
}

// UpdateNoteRequest represents a note change. An empty note clears it.
type UpdateNoteRequest struct {
	Note *string `json:"note" binding:"required"`
}

// ListMovieResponse represents a list entry with its movie details
type ListMovieResponse struct {
	ID      string        `json:"id"`
	ListID  string        `json:"list_id"`
	MovieID string        `json:"movie_id"`
	AddedBy string        `json:"added_by"`
	AddedAt time.Time     `json:"added_at"`
	Note    *string       `json:"note,omitempty"`
	Watched bool          `json:"watched"`
	Movie   *models.Movie `json:"movie"`
}

func listMovieToResponse(lm models.ListMovie) ListMovieResponse {
	resp := ListMovieResponse{
		ID:      lm.ID,
		ListID:  lm.ListID,
		MovieID: lm.MovieID,
		AddedBy: lm.AddedBy,
		AddedAt: lm.AddedAt,
		Note:    lm.Note,
		Watched: lm.Watched,
	}
	if lm.Movie.ID != "" {
		movie := lm.Movie
		resp.Movie = &movie
	}
	return resp
}

func normalizeNote(note *string) *string {
	if note == nil || *note == "" {
		return nil
	}
	return note
}

// Attach links movieID to listID unless the pair already exists. It reports
// whether a new row was inserted; an existing row is returned unchanged.
func Attach(tx *gorm.DB, listID, movieID, userID string, note *string, watched bool) (*models.ListMovie, bool, error) {
	var existing models.ListMovie
	result := tx.Where("list_id = ? AND movie_id = ?", listID, movieID).Limit(1).Find(&existing)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &existing, false, nil
	}

	lm := models.ListMovie{
		ListID:  listID,
		MovieID: movieID,
		AddedBy: userID,
		Note:    normalizeNote(note),
		Watched: watched,
	}
	if err := tx.Create(&lm).Error; err != nil {
		return nil, false, err
	}
	return &lm, true, nil
}

// AddToList caches the movie and attaches it to the list (owner or editor)
// @Summary Add a movie to a list
// @Tags list-movies
// @Accept json
// @Produce json
// @Param id path string true "List ID"
// @Param request body AddToListRequest true "Movie metadata"
// @Success 201 {object} ListMovieResponse
// @Success 200 {object} ListMovieResponse "Movie was already on the list"
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /lists/{id}/movies [post]
func (h *Handler) AddToList(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req AddToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		entry   *models.ListMovie
		created bool
	)
	err := h.db.Transaction(func(tx *gorm.DB) error {
		list, err := access.FindList(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if list == nil {
			return apperr.NotFound("List not found")
		}
		role, err := access.RoleOn(tx, list, userID)
		if err != nil {
			return err
		}
		if !role.CanEdit() {
			return apperr.Forbidden("You don't have permission to add movies to this list")
		}

		movieID, err := movies.EnsureMovie(tx, req.Metadata)
		if err != nil {
			return err
		}

		entry, created, err = Attach(tx, list.ID, movieID, userID, req.Note, false)
		if err != nil {
			return err
		}
		return tx.Preload("Movie").First(entry, "id = ?", entry.ID).Error
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to add movie")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, listMovieToResponse(*entry))
}

// ListByList returns the movies of a list, newest first. Callers without
// access get an empty array.
func (h *Handler) ListByList(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	role, err := access.ResolveRole(h.db, c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movies"})
		return
	}
	if !role.CanRead() {
		c.JSON(http.StatusOK, []ListMovieResponse{})
		return
	}

	var entries []models.ListMovie
	if err := h.db.Preload("Movie").Where("list_id = ?", c.Param("id")).Order("added_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movies"})
		return
	}

	responses := make([]ListMovieResponse, len(entries))
	for i, lm := range entries {
		responses[i] = listMovieToResponse(lm)
	}
	c.JSON(http.StatusOK, responses)
}

// withEntry loads a list entry and the caller's role on its list inside a
// transaction, then runs fn.
func (h *Handler) withEntry(c *gin.Context, fn func(tx *gorm.DB, lm *models.ListMovie, role models.ListRole) error) (*models.ListMovie, error) {
	userID, _ := auth.GetUserID(c)

	var lm models.ListMovie
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lm, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("List movie not found")
			}
			return err
		}
		role, err := access.ResolveRole(tx, lm.ListID, userID)
		if err != nil {
			return err
		}
		if err := fn(tx, &lm, role); err != nil {
			return err
		}
		if lm.ID == "" {
			return nil
		}
		return tx.Preload("Movie").First(&lm, "id = ?", lm.ID).Error
	})
	return &lm, err
}

// ToggleWatched flips the watched flag of a list entry (any role)
func (h *Handler) ToggleWatched(c *gin.Context) {
	lm, err := h.withEntry(c, func(tx *gorm.DB, lm *models.ListMovie, role models.ListRole) error {
		if !role.CanRead() {
			return apperr.Forbidden("Not authorized")
		}
		return tx.Model(lm).Update("watched", !lm.Watched).Error
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to update movie")
		return
	}

	c.JSON(http.StatusOK, listMovieToResponse(*lm))
}

// UpdateNote replaces the note of a list entry (any role)
func (h *Handler) UpdateNote(c *gin.Context) {
	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lm, err := h.withEntry(c, func(tx *gorm.DB, lm *models.ListMovie, role models.ListRole) error {
		if !role.CanRead() {
			return apperr.Forbidden("Not authorized")
		}
		return tx.Model(lm).Update("note", normalizeNote(req.Note)).Error
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to update note")
		return
	}

	c.JSON(http.StatusOK, listMovieToResponse(*lm))
}

// Remove detaches a movie from its list (owner or editor)
func (h *Handler) Remove(c *gin.Context) {
	_, err := h.withEntry(c, func(tx *gorm.DB, lm *models.ListMovie, role models.ListRole) error {
		if !role.CanEdit() {
			return apperr.Forbidden("You don't have permission to remove movies from this list")
		}
		if err := tx.Delete(lm).Error; err != nil {
			return err
		}
		lm.ID = ""
		return nil
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to remove movie")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Movie removed"})
}

// RegisterListRoutes registers routes nested under /lists
func (h *Handler) RegisterListRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/movies", h.AddToList)
	rg.GET("/:id/movies", h.ListByList)
}

// RegisterRoutes registers routes under /list-movies
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/toggle-watched", h.ToggleWatched)
	rg.PUT("/:id/note", h.UpdateNote)
	rg.DELETE("/:id", h.Remove)
}
