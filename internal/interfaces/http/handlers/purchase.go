// internal/interfaces/http/handlers/purchase.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/purchase"
	"gorm.io/gorm"
)

// PurchaseHandler handles purchase order endpoints
type PurchaseHandler struct {
	service *purchase.Service
	config  *config.Config
}

// NewPurchaseHandler creates a new purchase order handler
func NewPurchaseHandler(db *gorm.DB, cfg *config.Config) *PurchaseHandler {
	return &PurchaseHandler{
		service: purchase.NewService(db, cfg),
		config:  cfg,
	}
}

// CreateOrder handles POST /purchase-orders
func (h *PurchaseHandler) CreateOrder(c *gin.Context) {
	var req purchase.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.service.CreateOrder(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Purchase order created successfully", order)
}

// SetLineItems handles PUT /purchase-orders/:id
func (h *PurchaseHandler) SetLineItems(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Items []purchase.LineItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.service.SetLineItems(orderID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Purchase order updated successfully", order)
}

// SubmitOrder handles POST /purchase-orders/:id/submit
func (h *PurchaseHandler) SubmitOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Submit(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Purchase order submitted", order)
}

// ReceiveOrder handles POST /purchase-orders/:id/receive
func (h *PurchaseHandler) ReceiveOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Receive(orderID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Purchase order received, stock updated", order)
}

// CancelOrder handles POST /purchase-orders/:id/cancel
func (h *PurchaseHandler) CancelOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Cancel(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Purchase order cancelled", order)
}

// GetOrder handles GET /purchase-orders/:id
func (h *PurchaseHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", order)
}

// ListOrders handles GET /purchase-orders?status=
func (h *PurchaseHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(purchase.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", orders)
}
