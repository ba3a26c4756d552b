package invites

import (
	"errors"
	"net/http"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/access"
	"github.com/belowevolve/filmmates/pkg/filmmates/apperr"
	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const (
	// CodeAlphabet omits characters that are easy to confuse when read aloud
	// or copied by hand: 0, O, 1, I and l.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	// CodeLength is the number of characters in an invite code
	CodeLength = 8
)

// GenerateCode returns a fresh random invite code.
func GenerateCode() (string, error) {
	return gonanoid.Generate(CodeAlphabet, CodeLength)
}

// Handler handles invite requests
type Handler struct {
	db      *gorm.DB
	newCode func() (string, error)
}

// NewHandler creates a new invites handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, newCode: GenerateCode}
}

// CreateInviteRequest represents a request to issue an invite
type CreateInviteRequest struct {
	Role string `json:"role" binding:"required,oneof=editor viewer"`
}

// InviteResponse represents an invite in API responses
type InviteResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	ListID    string    `json:"list_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteInfoResponse is what a prospective member sees before accepting
type InviteInfoResponse struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	ListID          string  `json:"list_id"`
	ListName        string  `json:"list_name"`
	ListDescription *string `json:"list_description,omitempty"`
	Role            string  `json:"role"`
}

// AcceptResponse reports the list joined and the caller's role on it
type AcceptResponse struct {
	ListID string `json:"list_id"`
	Role   string `json:"role"`
}

func inviteToResponse(inv models.Invite) InviteResponse {
	return InviteResponse{
		ID:        inv.ID,
		Code:      inv.Code,
		ListID:    inv.ListID,
		Role:      string(inv.Role),
		CreatedAt: inv.CreatedAt,
	}
}

// Lookup resolves an invite code to the invite and its list.
// A code whose list was deleted is reported as NotFound.
func Lookup(db *gorm.DB, code string) (*models.Invite, *models.List, error) {
	var invite models.Invite
	if err := db.Where("code = ?", code).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Invalid invite code")
		}
		return nil, nil, err
	}

	list, err := access.FindList(db, invite.ListID)
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		return nil, nil, apperr.NotFound("List no longer exists")
	}
	return &invite, list, nil
}

// Create issues a new invite code for a list (owner only)
// @Summary Create an invite
// @Tags invites
// @Accept json
// @Produce json
// @Param id path string true "List ID"
// @Param request body CreateInviteRequest true "Role granted by the invite"
// @Success 201 {object} InviteResponse
// @Security BearerAuth
// @Router /lists/{id}/invites [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := access.FindList(h.db, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}
	if list.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can create invites"})
		return
	}

	code, err := h.newCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate invite code"})
		return
	}

	invite := models.Invite{
		Code:      code,
		ListID:    list.ID,
		Role:      models.ListRole(req.Role),
		CreatedBy: userID,
	}
	if err := h.db.Create(&invite).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}

	c.JSON(http.StatusCreated, inviteToResponse(invite))
}

// ListForList returns the invites of a list. Only the owner sees them;
// everyone else gets an empty array.
func (h *Handler) ListForList(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	invites := []models.Invite{}
	role, err := access.ResolveRole(h.db, c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}
	if role.IsOwner() {
		if err := h.db.Where("list_id = ?", c.Param("id")).Order("created_at DESC").Find(&invites).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
			return
		}
	}

	responses := make([]InviteResponse, len(invites))
	for i, inv := range invites {
		responses[i] = inviteToResponse(inv)
	}
	c.JSON(http.StatusOK, responses)
}

// Delete revokes an invite (owner only)
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var invite models.Invite
		if err := tx.First(&invite, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Invite not found")
			}
			return err
		}

		role, err := access.ResolveRole(tx, invite.ListID, userID)
		if err != nil {
			return err
		}
		if !role.IsOwner() {
			return apperr.Forbidden("Only the owner can delete invites")
		}

		return tx.Delete(&invite).Error
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to delete invite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite deleted"})
}

// GetByCode shows what an invite grants. It does not require authentication.
func (h *Handler) GetByCode(c *gin.Context) {
	invite, list, err := Lookup(h.db, c.Param("code"))
	if err != nil {
		apperr.Respond(c, err, "Failed to fetch invite")
		return
	}

	c.JSON(http.StatusOK, InviteInfoResponse{
		ID:              invite.ID,
		Code:            invite.Code,
		ListID:          list.ID,
		ListName:        list.Name,
		ListDescription: list.Description,
		Role:            string(invite.Role),
	})
}

// Accept redeems an invite for the caller. Redeeming twice, or redeeming
// an invite to one's own list, changes nothing.
func (h *Handler) Accept(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var response AcceptResponse
	err := h.db.Transaction(func(tx *gorm.DB) error {
		invite, list, err := Lookup(tx, c.Param("code"))
		if err != nil {
			return err
		}
		response.ListID = list.ID

		role, err := access.RoleOn(tx, list, userID)
		if err != nil {
			return err
		}
		if role != models.RoleNone {
			response.Role = string(role)
			return nil
		}

		member := models.ListMember{
			ListID: list.ID,
			UserID: userID,
			Role:   invite.Role,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		response.Role = string(member.Role)
		return nil
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to accept invite")
		return
	}

	c.JSON(http.StatusOK, response)
}

// RegisterListRoutes registers invite routes nested under /lists
func (h *Handler) RegisterListRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/invites", h.Create)
	rg.GET("/:id/invites", h.ListForList)
}

// RegisterRoutes registers authenticated invite routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:code/accept", h.Accept)
}

// RegisterPublicRoutes registers invite routes that need no authentication
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/:code", h.GetByCode)
}
