// Package server wires the HTTP handlers into a single gin engine.
package server

import (
	"net/http"

	"github.com/belowevolve/filmmates/pkg/filmmates/apikeys"
	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/importexport"
	"github.com/belowevolve/filmmates/pkg/filmmates/invitelink"
	"github.com/belowevolve/filmmates/pkg/filmmates/invites"
	"github.com/belowevolve/filmmates/pkg/filmmates/listmovies"
	"github.com/belowevolve/filmmates/pkg/filmmates/lists"
	"github.com/belowevolve/filmmates/pkg/filmmates/logging"
	"github.com/belowevolve/filmmates/pkg/filmmates/movies"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived values shared by all handlers. They are built
// once at start-up.
type Deps struct {
	DB      *gorm.DB
	Tokens  *auth.Tokens
	Catalog movies.Catalog
	Logger  *log.Logger
	SiteURL string
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	r := gin.New()
	r.Use(logging.Middleware(logging.Component(d.Logger, "http")), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "filmmates",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(d.DB, d.Tokens)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Combined auth middleware (accepts JWT or API key)
		combinedAuth := apikeys.CombinedAuthMiddleware(d.DB, d.Tokens)

		// API keys routes (JWT only - need to be logged in to manage keys)
		apiKeysHandler := apikeys.NewHandler(d.DB)
		apiKeysHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware(d.Tokens)))

		listsGroup := api.Group("/lists", combinedAuth)

		listsHandler := lists.NewHandler(d.DB)
		listsHandler.RegisterRoutes(listsGroup)
		listsHandler.RegisterMemberRoutes(listsGroup)

		invitesHandler := invites.NewHandler(d.DB)
		invitesHandler.RegisterListRoutes(listsGroup)
		invitesHandler.RegisterPublicRoutes(api.Group("/invites"))
		invitesHandler.RegisterRoutes(api.Group("/invites", combinedAuth))

		listMoviesHandler := listmovies.NewHandler(d.DB)
		listMoviesHandler.RegisterListRoutes(listsGroup)
		listMoviesHandler.RegisterRoutes(api.Group("/list-movies", combinedAuth))

		importExportHandler := importexport.NewHandler(d.DB)
		importExportHandler.RegisterRoutes(listsGroup)

		// Catalog routes (public)
		moviesHandler := movies.NewHandler(d.DB, d.Catalog)
		moviesHandler.RegisterRoutes(api.Group("/movies"))
	}

	// Short invite links (public)
	invitelink.NewHandler(d.DB, d.SiteURL).RegisterRoutes(r)

	return r
}
