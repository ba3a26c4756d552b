package invitelink

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/belowevolve/filmmates/pkg/filmmates/apperr"
	"github.com/belowevolve/filmmates/pkg/filmmates/invites"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles short invite links
type Handler struct {
	db      *gorm.DB
	siteURL string
}

// NewHandler creates a new invite link handler. siteURL is the public base
// URL of the web app.
func NewHandler(db *gorm.DB, siteURL string) *Handler {
	return &Handler{db: db, siteURL: strings.TrimRight(siteURL, "/")}
}

// Target returns the web app page for an invite code
func (h *Handler) Target(code string) string {
	return h.siteURL + "/invite/" + url.PathEscape(code)
}

// Redirect sends the visitor to the web app's invite page.
// The code is checked first so dead links fail here rather than in the app.
func (h *Handler) Redirect(c *gin.Context) {
	code := c.Param("code")

	if _, _, err := invites.Lookup(h.db, code); err != nil {
		apperr.Respond(c, err, "Failed to resolve invite")
		return
	}

	c.Redirect(http.StatusFound, h.Target(code))
}

// RegisterRoutes registers invite link routes on the root router
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/i/:code", h.Redirect)
}
