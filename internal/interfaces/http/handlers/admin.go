// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/user"
	"gorm.io/gorm"
)

// AdminHandler handles user administration endpoints
type AdminHandler struct {
	userService *user.Service
	config      *config.Config
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		userService: user.NewService(db, cfg),
		config:      cfg,
	}
}

// CreateUser handles POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.userService.CreateUser(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "User created successfully", created)
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", users)
}

// DeactivateUser handles POST /admin/users/:id/deactivate
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeactivateUser(userID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "User deactivated", nil)
}

// ActivateUser handles POST /admin/users/:id/activate
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.ActivateUser(userID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "User activated", nil)
}
