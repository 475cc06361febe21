// internal/domain/account/entity.go
package account

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType classifies who the ledger account belongs to
type AccountType string

const (
	AccountTypeCustomer AccountType = "customer"
	AccountTypeSupplier AccountType = "supplier"
	AccountTypeRep      AccountType = "rep"
)

// LedgerAccount is a receivables/payables party. Its balance is never
// stored; it is derived from issued invoices, receipts and credit notes at
// read time.
type LedgerAccount struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	AccountCode string         `json:"account_code" gorm:"uniqueIndex;not null;size:20"`
	Name        string         `json:"name" gorm:"not null;size:255"`
	Type        AccountType    `json:"type" gorm:"not null;size:20;index"`
	Phone       string         `json:"phone" gorm:"size:20"`
	Email       string         `json:"email" gorm:"size:255"`
	Address     string         `json:"address" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for LedgerAccount
func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}

// Receipt records money received against an account
type Receipt struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ReceiptNumber string          `json:"receipt_number" gorm:"uniqueIndex;not null;size:50"`
	AccountCode   string          `json:"account_code" gorm:"not null;size:20;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	ReceivedAt    time.Time       `json:"received_at" gorm:"not null"`
	Notes         string          `json:"notes" gorm:"type:text"`
	RecordedBy    string          `json:"recorded_by" gorm:"not null;size:255"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName returns the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}

// CreditNote reduces what an account owes without money changing hands
type CreditNote struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	NoteNumber  string          `json:"note_number" gorm:"uniqueIndex;not null;size:50"`
	AccountCode string          `json:"account_code" gorm:"not null;size:20;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	IssuedAt    time.Time       `json:"issued_at" gorm:"not null"`
	Notes       string          `json:"notes" gorm:"type:text"`
	RecordedBy  string          `json:"recorded_by" gorm:"not null;size:255"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName returns the table name for CreditNote
func (CreditNote) TableName() string {
	return "credit_notes"
}

// Balance is the derived receivables position of one account
type Balance struct {
	AccountCode string          `json:"account_code"`
	Invoiced    decimal.Decimal `json:"invoiced"`
	Received    decimal.Decimal `json:"received"`
	Credited    decimal.Decimal `json:"credited"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
