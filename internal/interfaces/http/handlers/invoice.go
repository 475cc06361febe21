// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/invoice"
	"github.com/your-org/bottling-erp/internal/pkg/pdf"
	"gorm.io/gorm"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	service    *invoice.Service
	pdfService *pdf.Service
	config     *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(db *gorm.DB, cfg *config.Config) *InvoiceHandler {
	return &InvoiceHandler{
		service:    invoice.NewService(db, cfg),
		pdfService: pdf.NewService(cfg),
		config:     cfg,
	}
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req invoice.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.service.CreateInvoice(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Invoice created successfully", created)
}

// UpdateInvoice handles PUT /invoices/:id
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req invoice.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.service.UpdateInvoice(invoiceID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Invoice updated successfully", updated)
}

// SetLineItems handles PUT /invoices/:id/items
func (h *InvoiceHandler) SetLineItems(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Items []invoice.LineItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.service.SetLineItems(invoiceID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Invoice items updated successfully", updated)
}

// IssueInvoice handles POST /invoices/:id/issue
func (h *InvoiceHandler) IssueInvoice(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	issued, err := h.service.IssueInvoice(invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Invoice issued", issued)
}

// MarkPaid handles POST /invoices/:id/pay
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	paid, err := h.service.MarkPaid(invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Invoice marked as paid", paid)
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetInvoice(invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", found)
}

// ListInvoices handles GET /invoices?account_code=
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.service.ListInvoices(c.Query("account_code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", invoices)
}

// DownloadPDF handles GET /invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetInvoice(invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateInvoice(found)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", found.InvoiceNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
