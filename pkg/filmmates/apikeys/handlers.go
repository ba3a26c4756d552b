package apikeys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// KeyLength is the length of the generated API key in bytes (32 bytes = 64 hex chars)
	KeyLength = 32
	// KeyPrefixLength is the number of characters to store as prefix for identification
	KeyPrefixLength = 8
)

// Handler handles API key requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new API keys handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// APIKeyResponse represents an API key in responses
type APIKeyResponse struct {
	ID          string     `json:"id"`
	KeyPrefix   string     `json:"key_prefix"`
	Description string     `json:"description"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateAPIKeyRequest represents a request to create an API key
type CreateAPIKeyRequest struct {
	Description string `json:"description"`
}

// CreateAPIKeyResponse includes the full key (only shown once)
type CreateAPIKeyResponse struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	KeyPrefix   string    `json:"key_prefix"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func generateAPIKey() (string, error) {
	bytes := make([]byte, KeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func hashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// Create creates a new API key for the authenticated user
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateAPIKeyRequest
	// Description is optional, an empty body is fine
	_ = c.ShouldBindJSON(&req)

	key, err := generateAPIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate API key"})
		return
	}

	apiKey := models.APIKey{
		UserID:      userID,
		KeyHash:     hashAPIKey(key),
		KeyPrefix:   key[:KeyPrefixLength],
		Description: req.Description,
	}
	if err := h.db.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	// The full key is only visible here
	c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		ID:          apiKey.ID,
		Key:         key,
		KeyPrefix:   apiKey.KeyPrefix,
		Description: apiKey.Description,
		CreatedAt:   apiKey.CreatedAt,
	})
}

// List returns all API keys for the authenticated user
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var apiKeys []models.APIKey
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&apiKeys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch API keys"})
		return
	}

	responses := make([]APIKeyResponse, len(apiKeys))
	for i, key := range apiKeys {
		responses[i] = APIKeyResponse{
			ID:          key.ID,
			KeyPrefix:   key.KeyPrefix,
			Description: key.Description,
			LastUsedAt:  key.LastUsedAt,
			CreatedAt:   key.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, responses)
}

// Delete deletes an API key
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	result := h.db.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&models.APIKey{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key deleted"})
}

// ValidateAPIKey looks up the key record for a raw key
func ValidateAPIKey(db *gorm.DB, key string) (*models.APIKey, error) {
	var apiKey models.APIKey
	if err := db.Where("key_hash = ?", hashAPIKey(key)).First(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// CombinedAuthMiddleware authenticates via JWT or API key.
// Both arrive as "Authorization: Bearer <token>"; JWTs contain dots, API keys
// are hex strings without dots.
func CombinedAuthMiddleware(db *gorm.DB, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token, ok := auth.BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		if strings.Contains(token, ".") {
			claims, err := tokens.Validate(token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			auth.SetUser(c, claims.UserID, claims.Email)
			c.Next()
			return
		}

		apiKey, err := ValidateAPIKey(db, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", apiKey.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		db.Model(&models.APIKey{}).Where("id = ?", apiKey.ID).Update("last_used_at", time.Now())

		auth.SetUser(c, user.ID, user.Email)
		c.Next()
	}
}

// RegisterRoutes registers API key routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/api-keys", h.Create)
	rg.GET("/api-keys", h.List)
	rg.DELETE("/api-keys/:id", h.Delete)
}
