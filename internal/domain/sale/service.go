// internal/domain/sale/service.go
package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles sales business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new sale service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// LineItemRequest represents one sale line in a create/update request
type LineItemRequest struct {
	ItemID    uint            `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateSaleRequest represents sale creation data
type CreateSaleRequest struct {
	AccountCode     string            `json:"account_code"`
	CustomerName    string            `json:"customer_name" binding:"required"`
	CustomerAddress string            `json:"customer_address"`
	CustomerPhone   string            `json:"customer_phone"`
	SaleDate        time.Time         `json:"sale_date"`
	Notes           string            `json:"notes"`
	Items           []LineItemRequest `json:"items" binding:"required"`
}

// UpdateSaleRequest replaces the full line-item set of an existing sale
type UpdateSaleRequest struct {
	Notes *string           `json:"notes,omitempty"`
	Items []LineItemRequest `json:"items" binding:"required"`
}

// CreateSale saves a sale: header, line items and one SALE_DEDUCTION ledger
// entry per line, all in one transaction. A shortfall on any line aborts the
// whole sale.
func (s *Service) CreateSale(req *CreateSaleRequest, recordedBy string) (*Sale, error) {
	if req.CustomerName == "" {
		return nil, apperr.Validation("customer name is required")
	}
	if err := validateLineItems(req.Items); err != nil {
		return nil, err
	}

	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	sale := &Sale{
		SaleNumber:  inventory.GenerateLogNumber("SAL", saleDate),
		AccountCode: req.AccountCode,
		Customer: CustomerSnapshot{
			CustomerName:    req.CustomerName,
			CustomerAddress: req.CustomerAddress,
			CustomerPhone:   req.CustomerPhone,
		},
		SaleDate:    saleDate,
		TotalAmount: decimal.Zero,
		Notes:       req.Notes,
		RecordedBy:  recordedBy,
	}
	if err := tx.Create(sale).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to create sale", err)
	}

	total, err := s.applyLineItems(tx, sale, req.Items, recordedBy)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	sale.TotalAmount = total
	if err := tx.Model(sale).Update("total_amount", total).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update sale total", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit sale", err)
	}

	return s.GetSale(sale.ID)
}

// UpdateSale replaces all line items: old deductions are returned to stock,
// existing lines deleted, and the new set applied with fresh deductions.
func (s *Service) UpdateSale(saleID uint, req *UpdateSaleRequest, recordedBy string) (*Sale, error) {
	if err := validateLineItems(req.Items); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	sale, err := loadSale(tx, saleID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.restoreLineItems(tx, sale, recordedBy); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("sale_id = ?", sale.ID).Delete(&SaleItem{}).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to delete sale items", err)
	}

	total, err := s.applyLineItems(tx, sale, req.Items, recordedBy)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{"total_amount": total}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	// The loaded sale still carries the deleted lines in Items; keep the
	// header update from upserting them back.
	if err := tx.Model(sale).Omit(clause.Associations).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update sale", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit sale update", err)
	}

	return s.GetSale(saleID)
}

// DeleteSale removes a sale and returns every deducted quantity to stock
func (s *Service) DeleteSale(saleID uint, recordedBy string) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	sale, err := loadSale(tx, saleID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := s.restoreLineItems(tx, sale, recordedBy); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("sale_id = ?", sale.ID).Delete(&SaleItem{}).Error; err != nil {
		tx.Rollback()
		return apperr.Storage("failed to delete sale items", err)
	}
	if err := tx.Delete(&Sale{}, sale.ID).Error; err != nil {
		tx.Rollback()
		return apperr.Storage("failed to delete sale", err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperr.Storage("failed to commit sale deletion", err)
	}
	return nil
}

// GetSale retrieves a single sale with its items
func (s *Service) GetSale(saleID uint) (*Sale, error) {
	var sale Sale
	if err := s.db.Preload("Items").First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sale %d not found", saleID)
		}
		return nil, apperr.Storage("failed to retrieve sale", err)
	}
	return &sale, nil
}

// ListSales retrieves sales, newest first
func (s *Service) ListSales() ([]Sale, error) {
	var sales []Sale
	if err := s.db.Preload("Items").Order("sale_date DESC, created_at DESC").Find(&sales).Error; err != nil {
		return nil, apperr.Storage("failed to list sales", err)
	}
	return sales, nil
}

// applyLineItems inserts sale lines and deducts stock per line on the
// caller's transaction, returning the document total.
func (s *Service) applyLineItems(tx *gorm.DB, sale *Sale, items []LineItemRequest, recordedBy string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range items {
		item, err := inventory.GetItemForUpdate(tx, line.ItemID)
		if err != nil {
			return decimal.Zero, err
		}

		lineTotal := line.UnitPrice.Mul(line.Quantity)
		saleItem := &SaleItem{
			SaleID:        sale.ID,
			ItemID:        item.ID,
			ItemName:      item.Name,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    lineTotal,
			UnitOfMeasure: item.UnitOfMeasure,
		}
		if err := tx.Create(saleItem).Error; err != nil {
			return decimal.Zero, apperr.Storage("failed to create sale item", err)
		}

		if _, err := inventory.ApplyAdjustment(tx, item.ID, line.Quantity.Neg(),
			inventory.AdjustmentSaleDeduction,
			fmt.Sprintf("Sale %s", sale.SaleNumber), recordedBy, sale.SaleDate); err != nil {
			return decimal.Zero, err
		}

		total = total.Add(lineTotal)
	}
	return total, nil
}

// restoreLineItems returns the sale's deducted quantities to stock as
// RETURN_ADDITION entries on the caller's transaction.
func (s *Service) restoreLineItems(tx *gorm.DB, sale *Sale, recordedBy string) error {
	for _, line := range sale.Items {
		if _, err := inventory.ApplyAdjustment(tx, line.ItemID, line.Quantity,
			inventory.AdjustmentReturnAddition,
			fmt.Sprintf("Reversal of sale %s", sale.SaleNumber), recordedBy, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

func loadSale(tx *gorm.DB, saleID uint) (*Sale, error) {
	var sale Sale
	if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sale %d not found", saleID)
		}
		return nil, apperr.Storage("failed to retrieve sale", err)
	}
	return &sale, nil
}

func validateLineItems(items []LineItemRequest) error {
	if len(items) == 0 {
		return apperr.Validation("sale must contain at least one line item")
	}
	for i, line := range items {
		if !line.Quantity.IsPositive() {
			return apperr.Validation("line %d: quantity must be greater than zero", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperr.Validation("line %d: unit price must not be negative", i+1)
		}
	}
	return nil
}
