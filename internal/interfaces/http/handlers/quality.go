// internal/interfaces/http/handlers/quality.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/quality"
	"gorm.io/gorm"
)

// QualityHandler handles lab test endpoints
type QualityHandler struct {
	service *quality.Service
	config  *config.Config
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(db *gorm.DB, cfg *config.Config) *QualityHandler {
	return &QualityHandler{
		service: quality.NewService(db, cfg),
		config:  cfg,
	}
}

// RecordTest handles POST /quality-tests
func (h *QualityHandler) RecordTest(c *gin.Context) {
	var req quality.RecordTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	test, err := h.service.RecordTest(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Quality test recorded", test)
}

// UpdateTest handles PUT /quality-tests/:id
func (h *QualityHandler) UpdateTest(c *gin.Context) {
	testID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req quality.UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	test, err := h.service.UpdateTest(testID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Quality test updated", test)
}

// GetTest handles GET /quality-tests/:id
func (h *QualityHandler) GetTest(c *gin.Context) {
	testID, ok := pathID(c, "id")
	if !ok {
		return
	}

	test, err := h.service.GetTest(testID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", test)
}

// ListTests handles GET /quality-tests?source=&result=
func (h *QualityHandler) ListTests(c *gin.Context) {
	var req quality.ListTestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tests, err := h.service.ListTests(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", tests)
}

// DeleteTest handles DELETE /quality-tests/:id
func (h *QualityHandler) DeleteTest(c *gin.Context) {
	testID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTest(testID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Quality test deleted", nil)
}
