// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles inventory business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateItemRequest represents item creation data
type CreateItemRequest struct {
	SKU               string           `json:"sku" binding:"required"`
	Name              string           `json:"name" binding:"required"`
	Category          string           `json:"category"`
	Kind              ItemKind         `json:"kind" binding:"required"`
	UnitOfMeasure     string           `json:"unit_of_measure" binding:"required"`
	UnitCost          decimal.Decimal  `json:"unit_cost"`
	InitialStock      decimal.Decimal  `json:"initial_stock"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
}

// UpdateItemRequest represents item update data. Stock is deliberately not
// part of it: quantity changes go through the ledger operations.
type UpdateItemRequest struct {
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	UnitOfMeasure     string           `json:"unit_of_measure"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
}

// ReceiveDeliveryRequest represents a milk/water tank intake
type ReceiveDeliveryRequest struct {
	TankSKU  string          `json:"tank_sku" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Supplier string          `json:"supplier"`
	Notes    string          `json:"notes"`
}

// RecordUsageRequest represents a raw-material usage deduction
type RecordUsageRequest struct {
	ItemID     uint            `json:"item_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Department string          `json:"department" binding:"required"`
	UsageDate  time.Time       `json:"usage_date"`
}

// ManualAdjustmentRequest represents a single manual stock correction
type ManualAdjustmentRequest struct {
	ItemID         uint            `json:"item_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	AdjustmentType AdjustmentType  `json:"adjustment_type" binding:"required"`
	Notes          string          `json:"notes"`
}

// SubmitForApprovalRequest represents a deferred stock addition
type SubmitForApprovalRequest struct {
	ItemID   uint            `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Notes    string          `json:"notes"`
}

// EditAdjustmentRequest rewrites the quantity of an existing ledger entry
type EditAdjustmentRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Notes    *string         `json:"notes,omitempty"`
}

// ListItemsRequest represents item list filters
type ListItemsRequest struct {
	Kind     ItemKind `form:"kind"`
	Category string   `form:"category"`
}

// ITEM MANAGEMENT

// CreateItem creates an item. A non-zero initial stock is applied through
// the ledger as an INITIAL_STOCK entry in the same transaction.
func (s *Service) CreateItem(req *CreateItemRequest, recordedBy string) (*Item, error) {
	if req.Kind != ItemKindRawMaterial && req.Kind != ItemKindFinishedGood && req.Kind != ItemKindTank {
		return nil, apperr.Validation("unknown item kind '%s'", req.Kind)
	}
	if req.InitialStock.IsNegative() {
		return nil, apperr.Validation("initial stock must not be negative")
	}

	var existing Item
	err := s.db.Where("sku = ?", req.SKU).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("item with SKU '%s' already exists", req.SKU)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage("failed to check SKU uniqueness", err)
	}

	item := &Item{
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		Kind:              req.Kind,
		UnitOfMeasure:     req.UnitOfMeasure,
		UnitCost:          req.UnitCost,
		Stock:             decimal.Zero,
		LowStockThreshold: req.LowStockThreshold,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(item).Error; err != nil {
		tx.Rollback()
		// A concurrent insert slips past the pre-check and lands on the
		// unique index instead.
		if isDuplicateKey(err) {
			return nil, apperr.Conflict("item with SKU '%s' already exists", req.SKU)
		}
		return nil, apperr.Storage("failed to create item", err)
	}

	if req.InitialStock.IsPositive() {
		if _, err := ApplyAdjustment(tx, item.ID, req.InitialStock, AdjustmentInitialStock,
			"Opening stock", recordedBy, time.Now().UTC()); err != nil {
			tx.Rollback()
			return nil, err
		}
		item.Stock = req.InitialStock
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit item creation", err)
	}
	return item, nil
}

// UpdateItem updates item master data
func (s *Service) UpdateItem(itemID uint, req *UpdateItemRequest) (*Item, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.UnitOfMeasure != "" {
		item.UnitOfMeasure = req.UnitOfMeasure
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.LowStockThreshold != nil {
		item.LowStockThreshold = req.LowStockThreshold
	}

	if err := s.db.Model(item).Select("name", "category", "unit_of_measure", "unit_cost", "low_stock_threshold").
		Updates(item).Error; err != nil {
		return nil, apperr.Storage("failed to update item", err)
	}
	return item, nil
}

// GetItem retrieves a single item by id
func (s *Service) GetItem(itemID uint) (*Item, error) {
	var item Item
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item %d not found", itemID)
		}
		return nil, apperr.Storage("failed to retrieve item", err)
	}
	return &item, nil
}

// GetItemBySKU retrieves a single item by unique SKU
func (s *Service) GetItemBySKU(sku string) (*Item, error) {
	var item Item
	if err := s.db.Where("sku = ?", sku).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item with SKU '%s' not found", sku)
		}
		return nil, apperr.Storage("failed to retrieve item", err)
	}
	return &item, nil
}

// ListItems retrieves items with optional kind/category filters
func (s *Service) ListItems(req *ListItemsRequest) ([]Item, error) {
	query := s.db.Model(&Item{})
	if req.Kind != "" {
		query = query.Where("kind = ?", req.Kind)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	var items []Item
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, apperr.Storage("failed to list items", err)
	}
	return items, nil
}

// LowStockItems returns items at or below their low-stock threshold
func (s *Service) LowStockItems() ([]Item, error) {
	var items []Item
	if err := s.db.Where("low_stock_threshold IS NOT NULL AND stock <= low_stock_threshold").
		Order("name ASC").Find(&items).Error; err != nil {
		return nil, apperr.Storage("failed to list low-stock items", err)
	}
	return items, nil
}

// LEDGER OPERATIONS

// ReceiveDelivery records a tank intake: one accepted delivery row plus the
// tank-level increment, both or neither. A missing tank item is a deployment
// problem, not a user error.
func (s *Service) ReceiveDelivery(req *ReceiveDeliveryRequest, receivedBy string) (*TankDelivery, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperr.Validation("delivery quantity must be greater than zero")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	delivery := &TankDelivery{
		TankSKU:    req.TankSKU,
		Supplier:   req.Supplier,
		Quantity:   req.Quantity,
		Status:     DeliveryStatusAccepted,
		Notes:      req.Notes,
		ReceivedBy: receivedBy,
		ReceivedAt: time.Now().UTC(),
	}
	if err := tx.Create(delivery).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to record delivery", err)
	}

	if err := IncrementStockBySKU(tx, req.TankSKU, req.Quantity); err != nil {
		tx.Rollback()
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Configuration("tank item '%s' is not configured", req.TankSKU)
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit delivery", err)
	}
	return delivery, nil
}

// ListDeliveries returns tank deliveries, newest first
func (s *Service) ListDeliveries() ([]TankDelivery, error) {
	var deliveries []TankDelivery
	if err := s.db.Order("received_at DESC, created_at DESC").Find(&deliveries).Error; err != nil {
		return nil, apperr.Storage("failed to list deliveries", err)
	}
	return deliveries, nil
}

// RecordUsage deducts a raw-material quantity consumed by a department
func (s *Service) RecordUsage(req *RecordUsageRequest, recordedBy string) (*StockAdjustment, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperr.Validation("usage quantity must be greater than zero")
	}

	date := req.UsageDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry, err := ApplyAdjustment(tx, req.ItemID, req.Quantity.Neg(), AdjustmentManualCorrectionSub,
		"Used by "+req.Department+" department", recordedBy, date)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit usage", err)
	}
	return entry, nil
}

// ManualAdjust applies one manual stock correction
func (s *Service) ManualAdjust(req *ManualAdjustmentRequest, recordedBy string) (*StockAdjustment, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperr.Validation("adjustment quantity must be greater than zero")
	}
	if req.AdjustmentType != AdjustmentManualCorrectionAdd && req.AdjustmentType != AdjustmentManualCorrectionSub {
		return nil, apperr.Validation("adjustment type must be %s or %s",
			AdjustmentManualCorrectionAdd, AdjustmentManualCorrectionSub)
	}

	delta := req.Quantity
	if req.AdjustmentType == AdjustmentManualCorrectionSub {
		delta = delta.Neg()
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry, err := ApplyAdjustment(tx, req.ItemID, delta, req.AdjustmentType, req.Notes, recordedBy, time.Now().UTC())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit adjustment", err)
	}
	return entry, nil
}

// BatchAdjust applies N manual corrections atomically: a failure on any line
// rolls the whole batch back.
func (s *Service) BatchAdjust(reqs []ManualAdjustmentRequest, recordedBy string) ([]StockAdjustment, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("batch must contain at least one adjustment")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entries := make([]StockAdjustment, 0, len(reqs))
	for i, req := range reqs {
		if !req.Quantity.IsPositive() {
			tx.Rollback()
			return nil, apperr.Validation("line %d: adjustment quantity must be greater than zero", i+1)
		}
		if req.AdjustmentType != AdjustmentManualCorrectionAdd && req.AdjustmentType != AdjustmentManualCorrectionSub {
			tx.Rollback()
			return nil, apperr.Validation("line %d: adjustment type must be %s or %s",
				i+1, AdjustmentManualCorrectionAdd, AdjustmentManualCorrectionSub)
		}

		delta := req.Quantity
		if req.AdjustmentType == AdjustmentManualCorrectionSub {
			delta = delta.Neg()
		}

		entry, err := ApplyAdjustment(tx, req.ItemID, delta, req.AdjustmentType, req.Notes, recordedBy, time.Now().UTC())
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit batch adjustment", err)
	}
	return entries, nil
}

// SubmitForApproval appends a PENDING_APPROVAL entry carrying the projected
// stock. The quantity store is untouched until Approve.
func (s *Service) SubmitForApproval(req *SubmitForApprovalRequest, recordedBy string) (*StockAdjustment, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperr.Validation("submission quantity must be greater than zero")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	item, err := GetItemForUpdate(tx, req.ItemID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	entry := &StockAdjustment{
		ItemID:           item.ID,
		QuantityAdjusted: req.Quantity,
		AdjustmentType:   AdjustmentPendingApproval,
		AdjustmentDate:   time.Now().UTC(),
		Notes:            req.Notes,
		PreviousStock:    item.Stock,
		NewStock:         item.Stock.Add(req.Quantity),
		RecordedBy:       recordedBy,
	}
	if err := AppendAdjustment(tx, entry); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit submission", err)
	}
	return entry, nil
}

// Approve applies a pending submission to the quantity store and rewrites
// the entry to a terminal type so it leaves the pending queue. Stock
// increases exactly once.
func (s *Service) Approve(logID uint) (*StockAdjustment, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry, err := GetAdjustment(tx, logID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if entry.AdjustmentType != AdjustmentPendingApproval {
		tx.Rollback()
		return nil, apperr.Validation("adjustment log %d is not pending approval", logID)
	}

	item, err := GetItemForUpdate(tx, entry.ItemID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Snapshots are refreshed to the approval moment: stock may have moved
	// since submission and the invariant is checked against live values.
	entry.AdjustmentType = AdjustmentAddition
	entry.PreviousStock = item.Stock
	entry.NewStock = item.Stock.Add(entry.QuantityAdjusted)

	if err := IncrementStock(tx, entry.ItemID, entry.QuantityAdjusted); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Save(entry).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update adjustment log", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit approval", err)
	}
	return entry, nil
}

// Reject deletes a pending submission. No stock was ever applied, so none
// is reverted.
func (s *Service) Reject(logID uint) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry, err := GetAdjustment(tx, logID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if entry.AdjustmentType != AdjustmentPendingApproval {
		tx.Rollback()
		return apperr.Validation("adjustment log %d is not pending approval", logID)
	}

	if err := tx.Delete(&StockAdjustment{}, logID).Error; err != nil {
		tx.Rollback()
		return apperr.Storage("failed to delete adjustment log", err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperr.Storage("failed to commit rejection", err)
	}
	return nil
}

// DeleteAndReverse removes a ledger entry and undoes its stock effect.
// Sale/return entries may only be reversed through their owning document;
// pending entries never applied anything and are simply deleted.
func (s *Service) DeleteAndReverse(logID uint) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry, err := GetAdjustment(tx, logID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if entry.AdjustmentType.IsProtected() {
		tx.Rollback()
		return apperr.Forbidden("%s entries can only be reversed through their sale or return", entry.AdjustmentType)
	}

	if entry.AdjustmentType != AdjustmentPendingApproval {
		item, err := GetItemForUpdate(tx, entry.ItemID)
		if err != nil {
			tx.Rollback()
			return err
		}
		reversed := item.Stock.Sub(entry.QuantityAdjusted)
		if reversed.IsNegative() {
			tx.Rollback()
			return apperr.InsufficientStock("reversing log %s would drive '%s' stock negative", entry.LogNumber, item.Name)
		}
		if err := IncrementStock(tx, entry.ItemID, entry.QuantityAdjusted.Neg()); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Delete(&StockAdjustment{}, logID).Error; err != nil {
		tx.Rollback()
		return apperr.Storage("failed to delete adjustment log", err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperr.Storage("failed to commit reversal", err)
	}
	return nil
}

// EditEntry rewrites an entry's quantity, applying only the difference to
// live stock; the historical PreviousStock snapshot is preserved.
func (s *Service) EditEntry(logID uint, req *EditAdjustmentRequest) (*StockAdjustment, error) {
	if !req.Quantity.IsPositive() && !req.Quantity.IsNegative() {
		return nil, apperr.Validation("quantity must not be zero")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry, err := GetAdjustment(tx, logID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if entry.AdjustmentType.IsProtected() {
		tx.Rollback()
		return nil, apperr.Forbidden("%s entries can only be changed through their sale or return", entry.AdjustmentType)
	}

	if entry.AdjustmentType != AdjustmentPendingApproval {
		item, err := GetItemForUpdate(tx, entry.ItemID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		difference := req.Quantity.Sub(entry.QuantityAdjusted)
		target := item.Stock.Add(difference)
		if target.IsNegative() {
			tx.Rollback()
			return nil, apperr.InsufficientStock("editing log %s would drive '%s' stock negative", entry.LogNumber, item.Name)
		}
		if err := SetStockAbsolute(tx, entry.ItemID, target); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	entry.QuantityAdjusted = req.Quantity
	entry.NewStock = entry.PreviousStock.Add(req.Quantity)
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := tx.Save(entry).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update adjustment log", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit edit", err)
	}
	return entry, nil
}

// HISTORY & QUEUES

// ListAdjustmentHistory returns ledger rows, optionally filtered by type
func (s *Service) ListAdjustmentHistory(adjustmentType *AdjustmentType) ([]StockAdjustment, error) {
	if adjustmentType != nil && !adjustmentType.IsValid() {
		return nil, apperr.Validation("unknown adjustment type '%s'", *adjustmentType)
	}
	return ListAdjustments(s.db, adjustmentType)
}

// PendingSubmissions returns the approval queue
func (s *Service) PendingSubmissions() ([]StockAdjustment, error) {
	pending := AdjustmentPendingApproval
	return ListAdjustments(s.db, &pending)
}

// GetAdjustmentByID returns a single ledger row
func (s *Service) GetAdjustmentByID(logID uint) (*StockAdjustment, error) {
	return GetAdjustment(s.db, logID)
}
