// internal/interfaces/http/handlers/production.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/production"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// ProductionHandler handles production batch endpoints
type ProductionHandler struct {
	service *production.Service
	config  *config.Config
}

// NewProductionHandler creates a new production handler
func NewProductionHandler(db *gorm.DB, cfg *config.Config) *ProductionHandler {
	return &ProductionHandler{
		service: production.NewService(db, cfg),
		config:  cfg,
	}
}

// StartBatch handles POST /production/batches
func (h *ProductionHandler) StartBatch(c *gin.Context) {
	var req production.StartBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	batch, err := h.service.Start(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Production batch started", batch)
}

// CompleteBatch handles POST /production/batches/:id/complete
func (h *ProductionHandler) CompleteBatch(c *gin.Context) {
	batchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req production.CompleteBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	batch, err := h.service.Complete(batchID, &req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Production batch completed, yield recorded", batch)
}

// CancelBatch handles POST /production/batches/:id/cancel
func (h *ProductionHandler) CancelBatch(c *gin.Context) {
	batchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	batch, err := h.service.Cancel(batchID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Production batch cancelled, inputs returned", batch)
}

// GetBatch handles GET /production/batches/:id
func (h *ProductionHandler) GetBatch(c *gin.Context) {
	batchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	batch, err := h.service.GetBatch(batchID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", batch)
}

// ListBatches handles GET /production/batches?status=
func (h *ProductionHandler) ListBatches(c *gin.Context) {
	var status *production.BatchStatus
	if raw := c.Query("status"); raw != "" {
		s := production.BatchStatus(raw)
		switch s {
		case production.BatchStatusInProgress, production.BatchStatusCompleted, production.BatchStatusCancelled:
			status = &s
		default:
			respondError(c, apperr.Validation("unknown batch status '%s'", raw))
			return
		}
	}

	batches, err := h.service.ListBatches(status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", batches)
}
