// internal/domain/purchase/entity.go
package purchase

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents where a purchase order sits in its lifecycle
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PurchaseOrder is an order to a raw-material supplier. Receiving it raises
// stock through the adjustment ledger.
type PurchaseOrder struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"uniqueIndex;not null;size:40" json:"order_number"`
	Supplier    string          `gorm:"not null;size:200" json:"supplier"`
	Status      OrderStatus     `gorm:"not null;size:20;default:'draft'" json:"status"`
	OrderDate   time.Time       `gorm:"not null;index" json:"order_date"`
	ReceivedAt  *time.Time      `json:"received_at,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Notes       string          `gorm:"type:text" json:"notes"`
	RecordedBy  string          `gorm:"size:100" json:"recorded_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []PurchaseItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
}

// PurchaseItem is one ordered raw-material line
type PurchaseItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint            `gorm:"not null;index" json:"purchase_order_id"`
	ItemID          uint            `gorm:"not null;index" json:"item_id"`
	ItemName        string          `gorm:"not null;size:200" json:"item_name"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	UnitOfMeasure   string          `gorm:"size:20" json:"unit_of_measure"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CanBeEdited reports whether line items may still be replaced
func (po *PurchaseOrder) CanBeEdited() bool {
	return po.Status == OrderStatusDraft
}

// CanBeCancelled reports whether the order may be cancelled
func (po *PurchaseOrder) CanBeCancelled() bool {
	return po.Status == OrderStatusDraft || po.Status == OrderStatusSubmitted
}
