// internal/domain/production/service.go
package production

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles production batch business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new production service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// StartBatchRequest represents a request to start a production batch
type StartBatchRequest struct {
	ProductItemID uint                `json:"product_item_id" binding:"required"`
	ExpectedYield decimal.Decimal     `json:"expected_yield" binding:"required"`
	Notes         string              `json:"notes"`
	Inputs        []BatchInputRequest `json:"inputs" binding:"required,min=1,dive"`
}

// BatchInputRequest is one raw material line of a StartBatchRequest
type BatchInputRequest struct {
	ItemID   uint            `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CompleteBatchRequest carries the measured yield when a batch finishes
type CompleteBatchRequest struct {
	ActualYield decimal.Decimal `json:"actual_yield" binding:"required"`
	Notes       string          `json:"notes"`
}

// Start creates an in-progress batch and consumes every input through the
// stock ledger. All deductions and the batch row commit together.
func (s *Service) Start(req *StartBatchRequest, startedBy string) (*ProductionBatch, error) {
	if !req.ExpectedYield.IsPositive() {
		return nil, apperr.Validation("expected yield must be greater than zero")
	}
	if err := validateInputs(req.Inputs); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, apperr.Storage("failed to begin transaction", tx.Error)
	}

	now := time.Now().UTC()

	product, err := inventory.GetItemForUpdate(tx, req.ProductItemID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if product.Kind != inventory.ItemKindFinishedGood {
		tx.Rollback()
		return nil, apperr.Validation("item %s is not a finished good", product.SKU)
	}

	batch := &ProductionBatch{
		BatchNumber:   inventory.GenerateLogNumber("BAT", now),
		ProductItemID: product.ID,
		ProductName:   product.Name,
		ExpectedYield: req.ExpectedYield,
		Status:        BatchStatusInProgress,
		StartedBy:     startedBy,
		StartedAt:     now,
		Notes:         req.Notes,
	}
	if err := tx.Create(batch).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to create production batch", err)
	}

	for i, line := range req.Inputs {
		item, err := inventory.GetItemForUpdate(tx, line.ItemID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		input := &BatchInput{
			BatchID:       batch.ID,
			ItemID:        item.ID,
			ItemName:      item.Name,
			Quantity:      line.Quantity,
			UnitOfMeasure: item.UnitOfMeasure,
		}
		if err := tx.Create(input).Error; err != nil {
			tx.Rollback()
			return nil, apperr.Storage(fmt.Sprintf("failed to create batch input %d", i+1), err)
		}

		notes := fmt.Sprintf("Consumed by production batch %s", batch.BatchNumber)
		if _, err := inventory.ApplyAdjustment(tx, item.ID, line.Quantity.Neg(),
			inventory.AdjustmentManualCorrectionSub, notes, startedBy, now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit transaction", err)
	}

	return s.loadBatch(batch.ID)
}

// Complete finishes an in-progress batch, records the actual yield, and
// credits the finished good through a PRODUCTION_YIELD ledger entry.
func (s *Service) Complete(batchID uint, req *CompleteBatchRequest, recordedBy string) (*ProductionBatch, error) {
	if !req.ActualYield.IsPositive() {
		return nil, apperr.Validation("actual yield must be greater than zero")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, apperr.Storage("failed to begin transaction", tx.Error)
	}

	batch, err := findBatch(tx, batchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !batch.IsInProgress() {
		tx.Rollback()
		return nil, apperr.Validation("batch %s is already %s", batch.BatchNumber, batch.Status)
	}

	now := time.Now().UTC()
	notes := fmt.Sprintf("Yield of production batch %s", batch.BatchNumber)
	if _, err := inventory.ApplyAdjustment(tx, batch.ProductItemID, req.ActualYield,
		inventory.AdjustmentProductionYield, notes, recordedBy, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	batch.ActualYield = req.ActualYield
	batch.Status = BatchStatusCompleted
	batch.CompletedAt = &now
	if req.Notes != "" {
		batch.Notes = req.Notes
	}
	if err := tx.Save(batch).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update production batch", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit transaction", err)
	}

	return s.loadBatch(batch.ID)
}

// Cancel aborts an in-progress batch and returns every consumed input to
// stock through MANUAL_CORRECTION_ADD entries.
func (s *Service) Cancel(batchID uint, recordedBy string) (*ProductionBatch, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, apperr.Storage("failed to begin transaction", tx.Error)
	}

	batch, err := findBatch(tx, batchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !batch.IsInProgress() {
		tx.Rollback()
		return nil, apperr.Validation("batch %s is already %s", batch.BatchNumber, batch.Status)
	}

	var inputs []BatchInput
	if err := tx.Where("batch_id = ?", batch.ID).Find(&inputs).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to load batch inputs", err)
	}

	now := time.Now().UTC()
	for _, input := range inputs {
		notes := fmt.Sprintf("Returned by cancelled production batch %s", batch.BatchNumber)
		if _, err := inventory.ApplyAdjustment(tx, input.ItemID, input.Quantity,
			inventory.AdjustmentManualCorrectionAdd, notes, recordedBy, now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	batch.Status = BatchStatusCancelled
	if err := tx.Save(batch).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update production batch", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit transaction", err)
	}

	return s.loadBatch(batch.ID)
}

// GetBatch retrieves a batch with its inputs
func (s *Service) GetBatch(batchID uint) (*ProductionBatch, error) {
	return s.loadBatch(batchID)
}

// ListBatches retrieves batches, newest first, optionally filtered by status
func (s *Service) ListBatches(status *BatchStatus) ([]ProductionBatch, error) {
	query := s.db.Preload("Inputs").Order("started_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var batches []ProductionBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, apperr.Storage("failed to list production batches", err)
	}
	return batches, nil
}

func (s *Service) loadBatch(batchID uint) (*ProductionBatch, error) {
	var batch ProductionBatch
	err := s.db.Preload("Inputs").First(&batch, batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("production batch %d not found", batchID)
	}
	if err != nil {
		return nil, apperr.Storage("failed to load production batch", err)
	}
	return &batch, nil
}

func findBatch(tx *gorm.DB, batchID uint) (*ProductionBatch, error) {
	var batch ProductionBatch
	err := tx.First(&batch, batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("production batch %d not found", batchID)
	}
	if err != nil {
		return nil, apperr.Storage("failed to load production batch", err)
	}
	return &batch, nil
}

func validateInputs(inputs []BatchInputRequest) error {
	if len(inputs) == 0 {
		return apperr.Validation("production batch must consume at least one input")
	}
	for i, input := range inputs {
		if !input.Quantity.IsPositive() {
			return apperr.Validation("input %d: quantity must be greater than zero", i+1)
		}
	}
	return nil
}
