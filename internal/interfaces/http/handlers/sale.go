// internal/interfaces/http/handlers/sale.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/sale"
	"gorm.io/gorm"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	service *sale.Service
	config  *config.Config
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(db *gorm.DB, cfg *config.Config) *SaleHandler {
	return &SaleHandler{
		service: sale.NewService(db, cfg),
		config:  cfg,
	}
}

// CreateSale handles POST /sales
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req sale.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.service.CreateSale(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Sale recorded successfully", created)
}

// UpdateSale handles PUT /sales/:id
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req sale.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.service.UpdateSale(saleID, &req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Sale updated successfully", updated)
}

// DeleteSale handles DELETE /sales/:id
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSale(saleID, actor(c)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Sale deleted, stock restored", nil)
}

// GetSale handles GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetSale(saleID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", found)
}

// ListSales handles GET /sales
func (h *SaleHandler) ListSales(c *gin.Context) {
	sales, err := h.service.ListSales()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", sales)
}
