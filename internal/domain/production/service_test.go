// internal/domain/production/service_test.go
package production

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServices(t *testing.T) (*Service, *inventory.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	models := []interface{}{
		&inventory.Item{}, &inventory.StockAdjustment{}, &inventory.TankDelivery{},
		&ProductionBatch{}, &BatchInput{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	cfg := &config.Config{}
	return NewService(db, cfg), inventory.NewService(db, cfg)
}

func seedItem(t *testing.T, inv *inventory.Service, sku, name string, kind inventory.ItemKind, stock int64) *inventory.Item {
	t.Helper()
	item, err := inv.CreateItem(&inventory.CreateItemRequest{
		SKU:           sku,
		Name:          name,
		Kind:          kind,
		UnitOfMeasure: "pcs",
		InitialStock:  decimal.NewFromInt(stock),
	}, "tester")
	if err != nil {
		t.Fatalf("seed item %s failed: %v", sku, err)
	}
	return item
}

func stockOf(t *testing.T, inv *inventory.Service, itemID uint) decimal.Decimal {
	t.Helper()
	item, err := inv.GetItem(itemID)
	if err != nil {
		t.Fatalf("get item %d failed: %v", itemID, err)
	}
	return item.Stock
}

func TestStartBatchConsumesInputs(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedItem(t, inv, "WATER-500ML", "Bottled Water 500ml", inventory.ItemKindFinishedGood, 0)
	bottles := seedItem(t, inv, "PET-500", "PET Bottle 500ml", inventory.ItemKindRawMaterial, 1000)
	caps := seedItem(t, inv, "CAP-001", "Bottle Cap", inventory.ItemKindRawMaterial, 1000)

	batch, err := svc.Start(&StartBatchRequest{
		ProductItemID: water.ID,
		ExpectedYield: decimal.NewFromInt(480),
		Inputs: []BatchInputRequest{
			{ItemID: bottles.ID, Quantity: decimal.NewFromInt(500)},
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(500)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("start batch failed: %v", err)
	}
	if batch.Status != BatchStatusInProgress {
		t.Errorf("expected in_progress, got %s", batch.Status)
	}
	if len(batch.Inputs) != 2 {
		t.Errorf("expected 2 inputs, got %d", len(batch.Inputs))
	}

	if got := stockOf(t, inv, bottles.ID); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected bottle stock 500 after start, got %s", got)
	}
	if got := stockOf(t, inv, caps.ID); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected cap stock 500 after start, got %s", got)
	}
}

func TestStartBatchInsufficientInputAborts(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedItem(t, inv, "WATER-500ML", "Bottled Water 500ml", inventory.ItemKindFinishedGood, 0)
	bottles := seedItem(t, inv, "PET-500", "PET Bottle 500ml", inventory.ItemKindRawMaterial, 1000)
	caps := seedItem(t, inv, "CAP-001", "Bottle Cap", inventory.ItemKindRawMaterial, 100)

	_, err := svc.Start(&StartBatchRequest{
		ProductItemID: water.ID,
		ExpectedYield: decimal.NewFromInt(480),
		Inputs: []BatchInputRequest{
			{ItemID: bottles.ID, Quantity: decimal.NewFromInt(500)},
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(500)},
		},
	}, "tester")
	if !apperr.IsKind(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}

	// first line's deduction must have rolled back with the batch
	if got := stockOf(t, inv, bottles.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected bottle stock unchanged at 1000, got %s", got)
	}
	batches, err := svc.ListBatches(nil)
	if err != nil {
		t.Fatalf("list batches failed: %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("expected no batch rows after rollback, got %d", len(batches))
	}
}

func TestStartBatchRejectsRawMaterialProduct(t *testing.T) {
	svc, inv := newTestServices(t)
	bottles := seedItem(t, inv, "PET-500", "PET Bottle 500ml", inventory.ItemKindRawMaterial, 1000)

	_, err := svc.Start(&StartBatchRequest{
		ProductItemID: bottles.ID,
		ExpectedYield: decimal.NewFromInt(480),
		Inputs: []BatchInputRequest{
			{ItemID: bottles.ID, Quantity: decimal.NewFromInt(1)},
		},
	}, "tester")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation for raw-material product, got %v", err)
	}
}

func TestCompleteBatchCreditsYield(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedItem(t, inv, "WATER-500ML", "Bottled Water 500ml", inventory.ItemKindFinishedGood, 0)
	bottles := seedItem(t, inv, "PET-500", "PET Bottle 500ml", inventory.ItemKindRawMaterial, 1000)

	batch, err := svc.Start(&StartBatchRequest{
		ProductItemID: water.ID,
		ExpectedYield: decimal.NewFromInt(500),
		Inputs: []BatchInputRequest{
			{ItemID: bottles.ID, Quantity: decimal.NewFromInt(500)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("start batch failed: %v", err)
	}

	completed, err := svc.Complete(batch.ID, &CompleteBatchRequest{
		ActualYield: decimal.NewFromInt(487),
	}, "tester")
	if err != nil {
		t.Fatalf("complete batch failed: %v", err)
	}
	if completed.Status != BatchStatusCompleted {
		t.Errorf("expected completed status, got %s", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Errorf("expected completed_at to be set")
	}
	if !completed.ActualYield.Equal(decimal.NewFromInt(487)) {
		t.Errorf("expected actual yield 487, got %s", completed.ActualYield)
	}

	if got := stockOf(t, inv, water.ID); !got.Equal(decimal.NewFromInt(487)) {
		t.Errorf("expected finished good stock 487, got %s", got)
	}

	yield := inventory.AdjustmentProductionYield
	entries, err := inv.ListAdjustmentHistory(&yield)
	if err != nil {
		t.Fatalf("list ledger failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 PRODUCTION_YIELD entry, got %d", len(entries))
	}

	if _, err := svc.Complete(batch.ID, &CompleteBatchRequest{
		ActualYield: decimal.NewFromInt(1),
	}, "tester"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation completing twice, got %v", err)
	}
}

func TestCancelBatchReturnsInputs(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedItem(t, inv, "WATER-500ML", "Bottled Water 500ml", inventory.ItemKindFinishedGood, 0)
	bottles := seedItem(t, inv, "PET-500", "PET Bottle 500ml", inventory.ItemKindRawMaterial, 1000)
	caps := seedItem(t, inv, "CAP-001", "Bottle Cap", inventory.ItemKindRawMaterial, 800)

	batch, err := svc.Start(&StartBatchRequest{
		ProductItemID: water.ID,
		ExpectedYield: decimal.NewFromInt(500),
		Inputs: []BatchInputRequest{
			{ItemID: bottles.ID, Quantity: decimal.NewFromInt(500)},
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(500)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("start batch failed: %v", err)
	}

	cancelled, err := svc.Cancel(batch.ID, "tester")
	if err != nil {
		t.Fatalf("cancel batch failed: %v", err)
	}
	if cancelled.Status != BatchStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}

	if got := stockOf(t, inv, bottles.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected bottle stock restored to 1000, got %s", got)
	}
	if got := stockOf(t, inv, caps.ID); !got.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected cap stock restored to 800, got %s", got)
	}

	if got := stockOf(t, inv, water.ID); !got.IsZero() {
		t.Errorf("cancelled batch must not yield stock, got %s", got)
	}

	if _, err := svc.Cancel(batch.ID, "tester"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation cancelling twice, got %v", err)
	}
}
