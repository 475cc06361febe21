// internal/domain/inventory/store.go
package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row-level write lock to the query. sqlite (used by the
// tests) has no FOR UPDATE; its single-writer lock serializes instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetItemForUpdate loads an item under a pessimistic write lock so that
// concurrent adjustments against the same row serialize.
func GetItemForUpdate(tx *gorm.DB, itemID uint) (*Item, error) {
	var item Item
	if err := forUpdate(tx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item %d not found", itemID)
		}
		return nil, apperr.Storage("failed to lock item", err)
	}
	return &item, nil
}

// GetItemBySKUForUpdate is GetItemForUpdate keyed by unique SKU.
func GetItemBySKUForUpdate(tx *gorm.DB, sku string) (*Item, error) {
	var item Item
	if err := forUpdate(tx).Where("sku = ?", sku).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item with SKU '%s' not found", sku)
		}
		return nil, apperr.Storage("failed to lock item", err)
	}
	return &item, nil
}

// IncrementStock atomically adds delta (may be negative) to the item's
// stock. Zero rows affected means the item does not exist.
func IncrementStock(tx *gorm.DB, itemID uint, delta decimal.Decimal) error {
	result := tx.Model(&Item{}).
		Where("id = ?", itemID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperr.Storage("failed to update stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("item %d not found", itemID)
	}
	return nil
}

// IncrementStockBySKU is IncrementStock keyed by unique SKU. Zero rows
// affected is how a typo'd tank SKU surfaces.
func IncrementStockBySKU(tx *gorm.DB, sku string, delta decimal.Decimal) error {
	result := tx.Model(&Item{}).
		Where("sku = ?", sku).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperr.Storage("failed to update stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("item with SKU '%s' not found", sku)
	}
	return nil
}

// SetStockAbsolute writes an exact stock value. Used only by the log
// edit/reversal path where the caller has already computed the result.
func SetStockAbsolute(tx *gorm.DB, itemID uint, value decimal.Decimal) error {
	result := tx.Model(&Item{}).
		Where("id = ?", itemID).
		UpdateColumn("stock", value)
	if result.Error != nil {
		return apperr.Storage("failed to set stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("item %d not found", itemID)
	}
	return nil
}

// AppendAdjustment inserts one ledger row, generating the log number when
// the caller did not supply one. The snapshot invariant is enforced here so
// no caller can write an inconsistent row.
func AppendAdjustment(tx *gorm.DB, entry *StockAdjustment) error {
	if !entry.PreviousStock.Add(entry.QuantityAdjusted).Equal(entry.NewStock) {
		return apperr.Validation("adjustment snapshots are inconsistent: %s + %s != %s",
			entry.PreviousStock, entry.QuantityAdjusted, entry.NewStock)
	}
	if entry.LogNumber == "" {
		entry.LogNumber = GenerateLogNumber("ADJ", entry.AdjustmentDate)
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperr.Storage("failed to append adjustment log", err)
	}
	return nil
}

// GetAdjustment loads one ledger row by id.
func GetAdjustment(tx *gorm.DB, logID uint) (*StockAdjustment, error) {
	var entry StockAdjustment
	if err := tx.First(&entry, logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("adjustment log %d not found", logID)
		}
		return nil, apperr.Storage("failed to load adjustment log", err)
	}
	return &entry, nil
}

// ListAdjustments returns ledger rows, newest adjustment first, optionally
// filtered by type. The pending-approval queue is this list filtered by
// PENDING_APPROVAL.
func ListAdjustments(tx *gorm.DB, adjustmentType *AdjustmentType) ([]StockAdjustment, error) {
	query := tx.Model(&StockAdjustment{}).Preload("Item")
	if adjustmentType != nil {
		query = query.Where("adjustment_type = ?", *adjustmentType)
	}

	var entries []StockAdjustment
	if err := query.Order("adjustment_date DESC, created_at DESC").Find(&entries).Error; err != nil {
		return nil, apperr.Storage("failed to list adjustment logs", err)
	}
	return entries, nil
}

// ApplyAdjustment is the one path through which stock changes: it locks the
// item row, validates sufficiency for deductions, mutates the quantity and
// appends the ledger row, all on the caller's transaction.
func ApplyAdjustment(tx *gorm.DB, itemID uint, delta decimal.Decimal, adjType AdjustmentType, notes, recordedBy string, date time.Time) (*StockAdjustment, error) {
	if !adjType.IsValid() {
		return nil, apperr.Validation("unknown adjustment type '%s'", adjType)
	}

	item, err := GetItemForUpdate(tx, itemID)
	if err != nil {
		return nil, err
	}

	newStock := item.Stock.Add(delta)
	if newStock.IsNegative() {
		return nil, apperr.InsufficientStock("insufficient stock for '%s': available %s, requested %s",
			item.Name, item.Stock, delta.Neg())
	}

	if err := IncrementStock(tx, itemID, delta); err != nil {
		return nil, err
	}

	entry := &StockAdjustment{
		ItemID:           itemID,
		QuantityAdjusted: delta,
		AdjustmentType:   adjType,
		AdjustmentDate:   date,
		Notes:            notes,
		PreviousStock:    item.Stock,
		NewStock:         newStock,
		RecordedBy:       recordedBy,
	}
	if err := AppendAdjustment(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// isDuplicateKey reports whether err is a unique-index violation. gorm only
// translates to ErrDuplicatedKey when TranslateError is on, so the postgres
// and sqlite message texts are matched as fallback.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// GenerateLogNumber builds a human-readable document number such as
// ADJ-20240131-3F2A1B.
func GenerateLogNumber(prefix string, date time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), suffix)
}
