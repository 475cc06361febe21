// internal/domain/invoice/entity.go
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// Invoice is a billing document. Customer fields are snapshotted at write
// time; invoices never touch stock.
type Invoice struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber   string          `gorm:"uniqueIndex;not null;size:40" json:"invoice_number"`
	AccountCode     string          `gorm:"size:40;index" json:"account_code"`
	CustomerName    string          `gorm:"not null;size:200" json:"customer_name"`
	CustomerAddress string          `gorm:"size:300" json:"customer_address"`
	InvoiceDate     time.Time       `gorm:"not null;index" json:"invoice_date"`
	DueDate         time.Time       `json:"due_date"`
	Status          InvoiceStatus   `gorm:"not null;size:20;default:'draft'" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Notes           string          `gorm:"type:text" json:"notes"`
	RecordedBy      string          `gorm:"size:100" json:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// InvoiceItem is one invoice line
type InvoiceItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceID     uint            `gorm:"not null;index" json:"invoice_id"`
	ItemID        uint            `gorm:"index" json:"item_id"`
	Description   string          `gorm:"not null;size:300" json:"description"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	UnitOfMeasure string          `gorm:"size:20" json:"unit_of_measure"`
	CreatedAt     time.Time       `json:"created_at"`
}
