// internal/domain/sale/entity.go
package sale

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerSnapshot is the customer identity copied onto a sale at write
// time. Billing documents must not change when the customer record does.
type CustomerSnapshot struct {
	CustomerName    string `gorm:"not null;size:200" json:"customer_name"`
	CustomerAddress string `gorm:"size:300" json:"customer_address"`
	CustomerPhone   string `gorm:"size:50" json:"customer_phone"`
}

// Sale is a sales document header; its line items deduct finished-goods
// stock when the sale is saved.
type Sale struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	SaleNumber  string           `gorm:"uniqueIndex;not null;size:40" json:"sale_number"`
	AccountCode string           `gorm:"size:40;index" json:"account_code"`
	Customer    CustomerSnapshot `gorm:"embedded" json:"customer"`
	SaleDate    time.Time        `gorm:"not null;index" json:"sale_date"`
	TotalAmount decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Notes       string           `gorm:"type:text" json:"notes"`
	RecordedBy  string           `gorm:"size:100" json:"recorded_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// SaleItem is one sale line referencing a finished-goods item
type SaleItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SaleID        uint            `gorm:"not null;index" json:"sale_id"`
	ItemID        uint            `gorm:"not null;index" json:"item_id"`
	ItemName      string          `gorm:"not null;size:200" json:"item_name"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	UnitOfMeasure string          `gorm:"size:20" json:"unit_of_measure"`
	CreatedAt     time.Time       `json:"created_at"`
}
