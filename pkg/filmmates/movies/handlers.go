package movies

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/belowevolve/filmmates/pkg/filmmates/apperr"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/belowevolve/filmmates/pkg/filmmates/tmdb"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Catalog is the subset of the TMDb client used by the handlers
type Catalog interface {
	Search(ctx context.Context, query string, page int) (*tmdb.Page, error)
	Popular(ctx context.Context, page int) (*tmdb.Page, error)
}

// Handler handles movie catalog requests
type Handler struct {
	db      *gorm.DB
	catalog Catalog
}

// NewHandler creates a new movies handler
func NewHandler(db *gorm.DB, catalog Catalog) *Handler {
	return &Handler{db: db, catalog: catalog}
}

// CatalogError translates a catalog client error into an apperr value
func CatalogError(err error) error {
	var upstream *tmdb.UpstreamError
	switch {
	case errors.Is(err, tmdb.ErrUnconfigured):
		return apperr.Unconfigured("Movie catalog is not configured").WithCause(err)
	case errors.As(err, &upstream):
		return apperr.Upstream(fmt.Sprintf("TMDb API error: %d", upstream.Status)).WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Upstream("TMDb request was cancelled").WithCause(err)
	default:
		return apperr.Upstream("TMDb request failed").WithCause(err)
	}
}

func pageParam(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// Search searches the catalog by title
// @Summary Search movies
// @Tags movies
// @Produce json
// @Param query query string true "Search text"
// @Param page query int false "Page number"
// @Success 200 {object} tmdb.Page
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /movies/search [get]
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	page, ok := pageParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}

	result, err := h.catalog.Search(c.Request.Context(), query, page)
	if err != nil {
		apperr.Respond(c, CatalogError(err), "Failed to search movies")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Popular returns the catalog's popular movies
func (h *Handler) Popular(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}

	result, err := h.catalog.Popular(c.Request.Context(), page)
	if err != nil {
		apperr.Respond(c, CatalogError(err), "Failed to fetch popular movies")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns a cached movie by its internal id
func (h *Handler) Get(c *gin.Context) {
	var movie models.Movie
	if err := h.db.First(&movie, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movie"})
		return
	}

	c.JSON(http.StatusOK, movie)
}

// RegisterRoutes registers movie routes. None of them require authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
	rg.GET("/popular", h.Popular)
	rg.GET("/:id", h.Get)
}
