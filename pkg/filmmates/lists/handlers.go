package lists

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/access"
	"github.com/belowevolve/filmmates/pkg/filmmates/apperr"
	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles list-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new lists handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateListRequest represents the request to create a list
type CreateListRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateListRequest represents the request to update a list.
// Only fields that are present are changed.
type UpdateListRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ListResponse represents a list in API responses
type ListResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Role        string    `json:"role"` // Caller's role on this list
	CreatedAt   time.Time `json:"created_at"`
}

// ListDetailResponse adds aggregate counts to a list
type ListDetailResponse struct {
	ListResponse
	MembersCount int64 `json:"members_count"` // memberships + the owner
	MoviesCount  int64 `json:"movies_count"`
}

func listToResponse(list models.List, role models.ListRole) ListResponse {
	return ListResponse{
		ID:          list.ID,
		Name:        list.Name,
		Description: list.Description,
		OwnerID:     list.OwnerID,
		Role:        string(role),
		CreatedAt:   list.CreatedAt,
	}
}

// List returns all lists the current user owns or is a member of, newest first
// @Summary List my lists
// @Tags lists
// @Produce json
// @Success 200 {array} ListResponse
// @Security BearerAuth
// @Router /lists [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var owned []models.List
	if err := h.db.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lists"})
		return
	}

	var memberships []models.ListMember
	if err := h.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lists"})
		return
	}

	roles := make(map[string]models.ListRole, len(memberships))
	memberListIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		roles[m.ListID] = m.Role
		memberListIDs = append(memberListIDs, m.ListID)
	}

	var memberLists []models.List
	if len(memberListIDs) > 0 {
		if err := h.db.Where("id IN ?", memberListIDs).Find(&memberLists).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lists"})
			return
		}
	}

	all := make([]ListResponse, 0, len(owned)+len(memberLists))
	for _, l := range owned {
		all = append(all, listToResponse(l, models.RoleOwner))
	}
	for _, l := range memberLists {
		if l.OwnerID == userID {
			continue
		}
		all = append(all, listToResponse(l, roles[l.ID]))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	c.JSON(http.StatusOK, all)
}

// Create creates a new list owned by the caller
// @Summary Create a list
// @Tags lists
// @Accept json
// @Produce json
// @Param request body CreateListRequest true "List details"
// @Success 201 {object} ListResponse
// @Security BearerAuth
// @Router /lists [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	list := models.List{
		Name:        name,
		Description: req.Description,
		OwnerID:     userID,
	}
	if err := h.db.Create(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	c.JSON(http.StatusCreated, listToResponse(list, models.RoleOwner))
}

// Get returns a list with member and movie counts.
// Callers without access get the same 404 as for a missing list.
// @Summary Get a list
// @Tags lists
// @Produce json
// @Param id path string true "List ID"
// @Success 200 {object} ListDetailResponse
// @Failure 404 {object} map[string]string "List not found"
// @Security BearerAuth
// @Router /lists/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	list, err := access.FindList(h.db, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	role, err := access.RoleOn(h.db, list, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}
	if !role.CanRead() {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	var membersCount, moviesCount int64
	if err := h.db.Model(&models.ListMember{}).Where("list_id = ?", list.ID).Count(&membersCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}
	if err := h.db.Model(&models.ListMovie{}).Where("list_id = ?", list.ID).Count(&moviesCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}

	c.JSON(http.StatusOK, ListDetailResponse{
		ListResponse: listToResponse(*list, role),
		MembersCount: membersCount + 1,
		MoviesCount:  moviesCount,
	})
}

// Update updates a list (owner only)
// @Summary Update a list
// @Tags lists
// @Accept json
// @Produce json
// @Param id path string true "List ID"
// @Param request body UpdateListRequest true "Updated list details"
// @Success 200 {object} ListResponse
// @Failure 403 {object} map[string]string "Only the owner can edit the list"
// @Failure 404 {object} map[string]string "List not found"
// @Security BearerAuth
// @Router /lists/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var updated models.List
	err := h.db.Transaction(func(tx *gorm.DB) error {
		list, err := access.FindList(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if list == nil {
			return apperr.NotFound("List not found")
		}
		if list.OwnerID != userID {
			return apperr.Forbidden("Only the owner can edit the list")
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("Name cannot be empty")
			}
			updates["name"] = name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(list).Updates(updates).Error; err != nil {
				return err
			}
		}

		updated = *list
		return tx.First(&updated, "id = ?", list.ID).Error
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to update list")
		return
	}

	c.JSON(http.StatusOK, listToResponse(updated, models.RoleOwner))
}

// Delete deletes a list together with its movies, members and invites (owner only)
// @Summary Delete a list
// @Tags lists
// @Produce json
// @Param id path string true "List ID"
// @Success 200 {object} map[string]string "List deleted"
// @Failure 403 {object} map[string]string "Only the owner can delete the list"
// @Failure 404 {object} map[string]string "List not found"
// @Security BearerAuth
// @Router /lists/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		list, err := access.FindList(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if list == nil {
			return apperr.NotFound("List not found")
		}
		if list.OwnerID != userID {
			return apperr.Forbidden("Only the owner can delete the list")
		}
		return DeleteCascade(tx, list.ID)
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to delete list")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}

// DeleteCascade removes a list and everything hanging off it.
// Movies themselves are shared between lists and stay.
func DeleteCascade(tx *gorm.DB, listID string) error {
	if err := tx.Where("list_id = ?", listID).Delete(&models.ListMovie{}).Error; err != nil {
		return err
	}
	if err := tx.Where("list_id = ?", listID).Delete(&models.ListMember{}).Error; err != nil {
		return err
	}
	if err := tx.Where("list_id = ?", listID).Delete(&models.Invite{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", listID).Delete(&models.List{}).Error
}

// RegisterRoutes registers list routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
