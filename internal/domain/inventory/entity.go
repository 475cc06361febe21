// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemKind distinguishes what an inventory item represents
type ItemKind string

const (
	ItemKindRawMaterial  ItemKind = "raw_material"
	ItemKindFinishedGood ItemKind = "finished_good"
	ItemKindTank         ItemKind = "tank" // milk/water tank level modelled as a stock row
)

// AdjustmentType is the closed set of reasons a stock quantity may change
type AdjustmentType string

const (
	AdjustmentPendingApproval     AdjustmentType = "PENDING_APPROVAL"
	AdjustmentAddition            AdjustmentType = "ADDITION"
	AdjustmentManualCorrectionAdd AdjustmentType = "MANUAL_CORRECTION_ADD"
	AdjustmentManualCorrectionSub AdjustmentType = "MANUAL_CORRECTION_SUBTRACT"
	AdjustmentInitialStock        AdjustmentType = "INITIAL_STOCK"
	AdjustmentSaleDeduction       AdjustmentType = "SALE_DEDUCTION"
	AdjustmentReturnAddition      AdjustmentType = "RETURN_ADDITION"
	AdjustmentProductionYield     AdjustmentType = "PRODUCTION_YIELD"
	AdjustmentRejectedByInventory AdjustmentType = "REJECTED_BY_INVENTORY"
)

// IsValid reports whether t is a member of the closed enumeration.
// Unrecognized strings are rejected at the boundary instead of falling
// through type switches later.
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentPendingApproval, AdjustmentAddition,
		AdjustmentManualCorrectionAdd, AdjustmentManualCorrectionSub,
		AdjustmentInitialStock, AdjustmentSaleDeduction,
		AdjustmentReturnAddition, AdjustmentProductionYield,
		AdjustmentRejectedByInventory:
		return true
	}
	return false
}

// IsProtected reports whether entries of this type belong to a sale/return
// workflow and may only be reversed through it.
func (t AdjustmentType) IsProtected() bool {
	return t == AdjustmentSaleDeduction || t == AdjustmentReturnAddition
}

// DeliveryStatus represents the state of a tank delivery record
type DeliveryStatus string

const (
	DeliveryStatusAccepted DeliveryStatus = "accepted"
)

// Item is a stocked inventory record: a raw material, a finished good, or a
// tank level. Stock is only ever mutated by a ledger operation.
type Item struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	SKU               string           `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string           `gorm:"not null;size:200" json:"name"`
	Category          string           `gorm:"size:100;index" json:"category"`
	Kind              ItemKind         `gorm:"not null;size:20;index" json:"kind"`
	UnitOfMeasure     string           `gorm:"not null;size:20" json:"unit_of_measure"`
	UnitCost          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	Stock             decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"stock"`
	LowStockThreshold *decimal.Decimal `gorm:"type:decimal(20,4)" json:"low_stock_threshold,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
}

// IsLowStock reports whether stock has fallen to or below the threshold
func (i *Item) IsLowStock() bool {
	if i.LowStockThreshold == nil {
		return false
	}
	return i.Stock.Cmp(*i.LowStockThreshold) <= 0
}

// StockAdjustment is one append-mostly ledger row recording a quantity
// change with before/after snapshots. The creation invariant is
// NewStock == PreviousStock + QuantityAdjusted.
type StockAdjustment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	LogNumber        string          `gorm:"uniqueIndex;not null;size:40" json:"log_number"`
	ItemID           uint            `gorm:"not null;index" json:"item_id"`
	QuantityAdjusted decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_adjusted"`
	AdjustmentType   AdjustmentType  `gorm:"not null;size:40;index" json:"adjustment_type"`
	AdjustmentDate   time.Time       `gorm:"not null;index" json:"adjustment_date"`
	Notes            string          `gorm:"type:text" json:"notes"`
	PreviousStock    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"previous_stock"`
	NewStock         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"new_stock"`
	RecordedBy       string          `gorm:"size:100" json:"recorded_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relationships
	Item Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// TankDelivery records a raw milk/water intake into one of the tank items
type TankDelivery struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TankSKU    string          `gorm:"not null;size:100;index" json:"tank_sku"`
	Supplier   string          `gorm:"size:200" json:"supplier"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Status     DeliveryStatus  `gorm:"not null;size:20" json:"status"`
	Notes      string          `gorm:"type:text" json:"notes"`
	ReceivedBy string          `gorm:"size:100" json:"received_by"`
	ReceivedAt time.Time       `gorm:"not null;index" json:"received_at"`
	CreatedAt  time.Time       `json:"created_at"`
}
