// internal/domain/inventory/concurrency_integration_test.go
package inventory

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newIntegrationService(t *testing.T) *Service {
	t.Helper()

	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires postgres)")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("connect to postgres: %v", err)
	}
	if err := db.AutoMigrate(&Item{}, &StockAdjustment{}, &TankDelivery{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewService(db, cfg)
}

// Concurrent deductions against one item must serialize on the row lock so
// that no decrement is lost and no ledger snapshot overlaps another.
func TestConcurrentUsageDeductionsSerialize(t *testing.T) {
	svc := newIntegrationService(t)

	sku := fmt.Sprintf("RACE-%s", strings.ToUpper(uuid.NewString()[:8]))
	item, err := svc.CreateItem(&CreateItemRequest{
		SKU:           sku,
		Name:          "Race Test Material",
		Kind:          ItemKindRawMaterial,
		UnitOfMeasure: "pcs",
		InitialStock:  decimal.NewFromInt(1000),
	}, "tester")
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	t.Cleanup(func() {
		svc.db.Where("item_id = ?", item.ID).Delete(&StockAdjustment{})
		svc.db.Delete(&Item{}, item.ID)
	})

	const workers = 8
	deduction := decimal.NewFromInt(100)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.RecordUsage(&RecordUsageRequest{
				ItemID:     item.ID,
				Quantity:   deduction,
				Department: "bottling",
			}, fmt.Sprintf("worker-%d", n))
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent usage failed: %v", err)
	}

	if got := stockOf(t, svc, item.ID); !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected stock 200 after 8 concurrent deductions of 100, got %s", got)
	}

	var entries []StockAdjustment
	if err := svc.db.Where("item_id = ? AND adjustment_type = ?", item.ID, AdjustmentManualCorrectionSub).
		Order("new_stock DESC").Find(&entries).Error; err != nil {
		t.Fatalf("list ledger rows: %v", err)
	}
	if len(entries) != workers {
		t.Fatalf("expected %d usage entries, got %d", workers, len(entries))
	}

	// Ordered by descending new_stock the snapshots must chain without gaps:
	// each entry's NewStock equals the next entry's PreviousStock.
	for i := 0; i < len(entries)-1; i++ {
		if !entries[i].NewStock.Equal(entries[i+1].PreviousStock) {
			t.Errorf("snapshot chain broken between entries %d and %d: %s != %s",
				i, i+1, entries[i].NewStock, entries[i+1].PreviousStock)
		}
	}
}

// The same lock must make over-deduction under contention fail cleanly
// instead of driving stock negative.
func TestConcurrentOverDeductionNeverGoesNegative(t *testing.T) {
	svc := newIntegrationService(t)

	sku := fmt.Sprintf("RACE-%s", strings.ToUpper(uuid.NewString()[:8]))
	item, err := svc.CreateItem(&CreateItemRequest{
		SKU:           sku,
		Name:          "Race Test Material",
		Kind:          ItemKindRawMaterial,
		UnitOfMeasure: "pcs",
		InitialStock:  decimal.NewFromInt(100),
	}, "tester")
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	t.Cleanup(func() {
		svc.db.Where("item_id = ?", item.ID).Delete(&StockAdjustment{})
		svc.db.Delete(&Item{}, item.ID)
	})

	// Three workers each want 60 out of 100: exactly one must fail.
	const workers = 3
	var wg sync.WaitGroup
	var failures int
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.RecordUsage(&RecordUsageRequest{
				ItemID:     item.ID,
				Quantity:   decimal.NewFromInt(60),
				Department: "bottling",
			}, fmt.Sprintf("worker-%d", n))
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if failures != 2 {
		t.Fatalf("expected exactly 2 of 3 over-deductions to fail, got %d failures", failures)
	}
	if got := stockOf(t, svc, item.ID); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected stock 40 after one successful deduction, got %s", got)
	}
}
