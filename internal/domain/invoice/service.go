// internal/domain/invoice/service.go
package invoice

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles invoice business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new invoice service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// LineItemRequest represents one invoice line in a create/update request
type LineItemRequest struct {
	ItemID        uint            `json:"item_id"`
	Description   string          `json:"description" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"required"`
	UnitOfMeasure string          `json:"unit_of_measure"`
}

// CreateInvoiceRequest represents invoice creation data
type CreateInvoiceRequest struct {
	AccountCode     string            `json:"account_code"`
	CustomerName    string            `json:"customer_name" binding:"required"`
	CustomerAddress string            `json:"customer_address"`
	InvoiceDate     time.Time         `json:"invoice_date"`
	DueDate         time.Time         `json:"due_date"`
	Notes           string            `json:"notes"`
	Items           []LineItemRequest `json:"items" binding:"required"`
}

// UpdateInvoiceRequest represents invoice header update data
type UpdateInvoiceRequest struct {
	CustomerName    string     `json:"customer_name"`
	CustomerAddress *string    `json:"customer_address,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// CreateInvoice creates an invoice header plus its line items in one
// transaction
func (s *Service) CreateInvoice(req *CreateInvoiceRequest, recordedBy string) (*Invoice, error) {
	if req.CustomerName == "" {
		return nil, apperr.Validation("customer name is required")
	}
	if err := validateLineItems(req.Items); err != nil {
		return nil, err
	}

	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = invoiceDate.AddDate(0, 0, 30)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	inv := &Invoice{
		InvoiceNumber:   inventory.GenerateLogNumber("INV", invoiceDate),
		AccountCode:     req.AccountCode,
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		Status:          InvoiceStatusDraft,
		TotalAmount:     decimal.Zero,
		Notes:           req.Notes,
		RecordedBy:      recordedBy,
	}
	if err := tx.Create(inv).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to create invoice", err)
	}

	total, err := insertLineItems(tx, inv.ID, req.Items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	inv.TotalAmount = total
	if err := tx.Model(inv).Update("total_amount", total).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update invoice total", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit invoice", err)
	}
	return s.GetInvoice(inv.ID)
}

// SetLineItems replaces the invoice's full child set and recomputes the
// total. The invariant lives here: after the call, the persisted line set
// exactly matches the input.
func (s *Service) SetLineItems(invoiceID uint, items []LineItemRequest) (*Invoice, error) {
	if err := validateLineItems(items); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	inv, err := loadInvoice(tx, invoiceID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if inv.Status == InvoiceStatusPaid {
		tx.Rollback()
		return nil, apperr.Forbidden("paid invoices cannot be changed")
	}

	if err := tx.Where("invoice_id = ?", inv.ID).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to delete invoice items", err)
	}

	total, err := insertLineItems(tx, inv.ID, items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// inv.Items still holds the deleted lines; keep the total update from
	// upserting them back.
	if err := tx.Model(inv).Omit(clause.Associations).Update("total_amount", total).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update invoice total", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit invoice items", err)
	}
	return s.GetInvoice(invoiceID)
}

// UpdateInvoice updates invoice header fields
func (s *Service) UpdateInvoice(invoiceID uint, req *UpdateInvoiceRequest) (*Invoice, error) {
	inv, err := s.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoiceStatusPaid {
		return nil, apperr.Forbidden("paid invoices cannot be changed")
	}

	updates := map[string]interface{}{}
	if req.CustomerName != "" {
		updates["customer_name"] = req.CustomerName
	}
	if req.CustomerAddress != nil {
		updates["customer_address"] = *req.CustomerAddress
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return inv, nil
	}

	if err := s.db.Model(inv).Updates(updates).Error; err != nil {
		return nil, apperr.Storage("failed to update invoice", err)
	}
	return s.GetInvoice(invoiceID)
}

// IssueInvoice transitions a draft invoice to issued, making it count
// toward the account balance
func (s *Service) IssueInvoice(invoiceID uint) (*Invoice, error) {
	inv, err := s.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != InvoiceStatusDraft {
		return nil, apperr.Validation("invoice %s is already %s", inv.InvoiceNumber, inv.Status)
	}

	if err := s.db.Model(inv).Update("status", InvoiceStatusIssued).Error; err != nil {
		return nil, apperr.Storage("failed to issue invoice", err)
	}
	inv.Status = InvoiceStatusIssued
	return inv, nil
}

// MarkPaid transitions an issued invoice to paid
func (s *Service) MarkPaid(invoiceID uint) (*Invoice, error) {
	inv, err := s.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != InvoiceStatusIssued {
		return nil, apperr.Validation("invoice %s is %s, only issued invoices can be paid", inv.InvoiceNumber, inv.Status)
	}

	if err := s.db.Model(inv).Update("status", InvoiceStatusPaid).Error; err != nil {
		return nil, apperr.Storage("failed to mark invoice paid", err)
	}
	inv.Status = InvoiceStatusPaid
	return inv, nil
}

// GetInvoice retrieves a single invoice with items
func (s *Service) GetInvoice(invoiceID uint) (*Invoice, error) {
	return loadInvoice(s.db, invoiceID)
}

// ListInvoices retrieves invoices, newest first, optionally by account
func (s *Service) ListInvoices(accountCode string) ([]Invoice, error) {
	query := s.db.Preload("Items")
	if accountCode != "" {
		query = query.Where("account_code = ?", accountCode)
	}

	var invoices []Invoice
	if err := query.Order("invoice_date DESC, created_at DESC").Find(&invoices).Error; err != nil {
		return nil, apperr.Storage("failed to list invoices", err)
	}
	return invoices, nil
}

func insertLineItems(tx *gorm.DB, invoiceID uint, items []LineItemRequest) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range items {
		lineTotal := line.UnitPrice.Mul(line.Quantity)
		item := &InvoiceItem{
			InvoiceID:     invoiceID,
			ItemID:        line.ItemID,
			Description:   line.Description,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    lineTotal,
			UnitOfMeasure: line.UnitOfMeasure,
		}
		if err := tx.Create(item).Error; err != nil {
			return decimal.Zero, apperr.Storage("failed to create invoice item", err)
		}
		total = total.Add(lineTotal)
	}
	return total, nil
}

func loadInvoice(tx *gorm.DB, invoiceID uint) (*Invoice, error) {
	var inv Invoice
	if err := tx.Preload("Items").First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("invoice %d not found", invoiceID)
		}
		return nil, apperr.Storage("failed to retrieve invoice", err)
	}
	return &inv, nil
}

func validateLineItems(items []LineItemRequest) error {
	if len(items) == 0 {
		return apperr.Validation("invoice must contain at least one line item")
	}
	for i, line := range items {
		if line.Description == "" {
			return apperr.Validation("line %d: description is required", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperr.Validation("line %d: quantity must be greater than zero", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperr.Validation("line %d: unit price must not be negative", i+1)
		}
	}
	return nil
}
