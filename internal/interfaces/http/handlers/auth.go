// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/user"
	"github.com/your-org/bottling-erp/internal/interfaces/http/middleware"
	"github.com/your-org/bottling-erp/internal/pkg/auth"
	"gorm.io/gorm"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
	jwtManager  *auth.JWTManager
	redisClient *redis.Client
	config      *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: user.NewService(db, cfg),
		jwtManager:  auth.NewJWTManager(cfg),
		redisClient: redisClient,
		config:      cfg,
	}
}

// Login handles staff login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Login successful", response)
}

// RefreshToken handles token refresh. Denylisted refresh tokens are
// rejected before the service sees them.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if h.isDenylisted(c.Request.Context(), req.RefreshToken) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Refresh token revoked",
		})
		return
	}

	response, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	// Rotation retires the presented token
	if h.config.JWT.RefreshTokenRotation && response.RefreshToken != req.RefreshToken {
		h.denylist(c.Request.Context(), req.RefreshToken)
	}

	respondOK(c, http.StatusOK, "Token refreshed successfully", response)
}

// Logout revokes the presented refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	h.denylist(c.Request.Context(), req.RefreshToken)

	respondOK(c, http.StatusOK, "Logged out successfully", nil)
}

// GetProfile gets the current staff profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "User not authenticated",
		})
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", profile)
}

// ChangePassword handles password change for the current staff member
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "User not authenticated",
		})
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) denylistKey(token string) string {
	return fmt.Sprintf("denylist:refresh:%s", token)
}

func (h *AuthHandler) denylist(ctx context.Context, token string) {
	// Keep the entry as long as the token could still be valid
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	h.redisClient.Set(ctx, h.denylistKey(token), "revoked", h.config.JWT.RefreshTokenExpiry)
}

func (h *AuthHandler) isDenylisted(ctx context.Context, token string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	count, err := h.redisClient.Exists(ctx, h.denylistKey(token)).Result()
	return err == nil && count > 0
}
