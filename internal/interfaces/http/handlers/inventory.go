// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/interfaces/http/middleware"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// InventoryHandler handles item and stock ledger endpoints
type InventoryHandler struct {
	service *inventory.Service
	config  *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		service: inventory.NewService(db, cfg),
		config:  cfg,
	}
}

// CreateItem handles POST /items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req inventory.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.service.CreateItem(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Item created successfully", item)
}

// UpdateItem handles PUT /items/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req inventory.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.service.UpdateItem(itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item updated successfully", item)
}

// GetItem handles GET /items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetItem(itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", item)
}

// ListItems handles GET /items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var req inventory.ListItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.service.ListItems(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", items)
}

// LowStockItems handles GET /items/low-stock
func (h *InventoryHandler) LowStockItems(c *gin.Context) {
	items, err := h.service.LowStockItems()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", items)
}

// ReceiveDelivery handles POST /inventory/deliveries
func (h *InventoryHandler) ReceiveDelivery(c *gin.Context) {
	var req inventory.ReceiveDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	delivery, err := h.service.ReceiveDelivery(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Delivery received successfully", delivery)
}

// ListDeliveries handles GET /inventory/deliveries
func (h *InventoryHandler) ListDeliveries(c *gin.Context) {
	deliveries, err := h.service.ListDeliveries()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", deliveries)
}

// RecordUsage handles POST /inventory/usage
func (h *InventoryHandler) RecordUsage(c *gin.Context) {
	var req inventory.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.service.RecordUsage(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Usage recorded successfully", entry)
}

// ManualAdjust handles POST /inventory/adjustments
func (h *InventoryHandler) ManualAdjust(c *gin.Context) {
	var req inventory.ManualAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.service.ManualAdjust(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Adjustment recorded successfully", entry)
}

// BatchAdjust handles POST /inventory/adjustments/batch
func (h *InventoryHandler) BatchAdjust(c *gin.Context) {
	var req struct {
		Adjustments []inventory.ManualAdjustmentRequest `json:"adjustments" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entries, err := h.service.BatchAdjust(req.Adjustments, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Adjustments recorded successfully", entries)
}

// ListAdjustments handles GET /inventory/adjustments?type=
func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	var adjustmentType *inventory.AdjustmentType
	if raw := c.Query("type"); raw != "" {
		t := inventory.AdjustmentType(raw)
		if !t.IsValid() {
			respondError(c, apperr.Validation("unknown adjustment type '%s'", raw))
			return
		}
		adjustmentType = &t
	}

	entries, err := h.service.ListAdjustmentHistory(adjustmentType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", entries)
}

// GetAdjustment handles GET /inventory/adjustments/:id
func (h *InventoryHandler) GetAdjustment(c *gin.Context) {
	logID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetAdjustmentByID(logID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", entry)
}

// EditAdjustment handles PUT /inventory/adjustments/:id
func (h *InventoryHandler) EditAdjustment(c *gin.Context) {
	logID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req inventory.EditAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.service.EditEntry(logID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Adjustment updated successfully", entry)
}

// DeleteAdjustment handles DELETE /inventory/adjustments/:id
func (h *InventoryHandler) DeleteAdjustment(c *gin.Context) {
	logID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAndReverse(logID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Adjustment deleted and reversed", nil)
}

// SubmitForApproval handles POST /inventory/submissions
func (h *InventoryHandler) SubmitForApproval(c *gin.Context) {
	var req inventory.SubmitForApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.service.SubmitForApproval(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Submission created, awaiting approval", entry)
}

// PendingSubmissions handles GET /inventory/adjustments/pending
func (h *InventoryHandler) PendingSubmissions(c *gin.Context) {
	entries, err := h.service.PendingSubmissions()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", entries)
}

// ApproveSubmission handles POST /inventory/submissions/:id/approve
func (h *InventoryHandler) ApproveSubmission(c *gin.Context) {
	logID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.Approve(logID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Submission approved, stock updated", entry)
}

// RejectSubmission handles POST /inventory/submissions/:id/reject
func (h *InventoryHandler) RejectSubmission(c *gin.Context) {
	logID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Reject(logID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Submission rejected", nil)
}

// actor resolves who performs the operation, for ledger attribution
func actor(c *gin.Context) string {
	if email, ok := middleware.GetUserEmailFromContext(c); ok {
		return email
	}
	return "system"
}

// pathID parses a numeric :id path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, apperr.Validation("invalid %s '%s'", name, raw))
		return 0, false
	}
	return uint(id), true
}
