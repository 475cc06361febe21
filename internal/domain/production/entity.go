// internal/domain/production/entity.go
package production

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
)

// BatchStatus represents the lifecycle state of a production batch
type BatchStatus string

const (
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

// ProductionBatch is one run of the bottling line. Starting a batch consumes
// its raw-material inputs; completing it yields stock of the finished good.
type ProductionBatch struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	BatchNumber   string          `json:"batch_number" gorm:"uniqueIndex;not null;size:50"`
	ProductItemID uint            `json:"product_item_id" gorm:"not null;index"`
	ProductName   string          `json:"product_name" gorm:"not null;size:255"`
	ExpectedYield decimal.Decimal `json:"expected_yield" gorm:"type:decimal(20,4);not null"`
	ActualYield   decimal.Decimal `json:"actual_yield" gorm:"type:decimal(20,4);default:0"`
	Status        BatchStatus     `json:"status" gorm:"not null;default:'in_progress';size:20;index"`
	StartedBy     string          `json:"started_by" gorm:"not null;size:255"`
	StartedAt     time.Time       `json:"started_at" gorm:"not null"`
	CompletedAt   *time.Time      `json:"completed_at"`
	Notes         string          `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	ProductItem inventory.Item `json:"product_item,omitempty" gorm:"foreignKey:ProductItemID"`
	Inputs      []BatchInput   `json:"inputs,omitempty" gorm:"foreignKey:BatchID"`
}

// TableName returns the table name for ProductionBatch
func (ProductionBatch) TableName() string {
	return "production_batches"
}

// BatchInput is one raw material consumed by a batch. Name and unit are
// snapshotted from the item at start time.
type BatchInput struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	BatchID       uint            `json:"batch_id" gorm:"not null;index"`
	ItemID        uint            `json:"item_id" gorm:"not null;index"`
	ItemName      string          `json:"item_name" gorm:"not null;size:255"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:decimal(20,4);not null"`
	UnitOfMeasure string          `json:"unit_of_measure" gorm:"size:20"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName returns the table name for BatchInput
func (BatchInput) TableName() string {
	return "production_batch_inputs"
}

// IsInProgress reports whether the batch can still be completed or cancelled.
func (b *ProductionBatch) IsInProgress() bool {
	return b.Status == BatchStatusInProgress
}
