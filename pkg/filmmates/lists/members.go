package lists

import (
	"net/http"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/access"
	"github.com/belowevolve/filmmates/pkg/filmmates/apperr"
	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MemberResponse represents a list member in API responses.
// The owner is reported without a membership ID or join date.
type MemberResponse struct {
	ID       string     `json:"id,omitempty"`
	UserID   string     `json:"user_id"`
	Email    string     `json:"email,omitempty"`
	Name     string     `json:"name,omitempty"`
	Role     string     `json:"role"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

// ListMembers returns the owner followed by all members of a list
func (h *Handler) ListMembers(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	list, err := access.FindList(h.db, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}
	role, err := access.RoleOn(h.db, list, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	if !role.CanRead() {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	var memberships []models.ListMember
	if err := h.db.Where("list_id = ?", list.ID).Order("joined_at ASC").Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	userIDs := []string{list.OwnerID}
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	var users []models.User
	if err := h.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	owner := byID[list.OwnerID]
	response := make([]MemberResponse, 0, len(memberships)+1)
	response = append(response, MemberResponse{
		UserID: list.OwnerID,
		Email:  owner.Email,
		Name:   owner.Name,
		Role:   string(models.RoleOwner),
	})
	for _, m := range memberships {
		joined := m.JoinedAt
		u := byID[m.UserID]
		response = append(response, MemberResponse{
			ID:       m.ID,
			UserID:   m.UserID,
			Email:    u.Email,
			Name:     u.Name,
			Role:     string(m.Role),
			JoinedAt: &joined,
		})
	}

	c.JSON(http.StatusOK, response)
}

// RemoveMember removes a membership. The owner may remove anyone,
// a member may remove themselves (leave the list).
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		list, err := access.FindList(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if list == nil {
			return apperr.NotFound("List not found")
		}

		var member models.ListMember
		result := tx.Where("id = ? AND list_id = ?", c.Param("memberId"), list.ID).Limit(1).Find(&member)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("Member not found")
		}

		if list.OwnerID != userID && member.UserID != userID {
			return apperr.Forbidden("Only the owner can remove other members")
		}

		return tx.Delete(&member).Error
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to remove member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// RegisterMemberRoutes registers member management routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/members", h.ListMembers)
	rg.DELETE("/:id/members/:memberId", h.RemoveMember)
}
