// internal/domain/sale/service_test.go
package sale

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
		&Sale{}, &SaleItem{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	cfg := &config.Config{}
	return NewService(db, cfg), inventory.NewService(db, cfg)
}

func seedProduct(t *testing.T, inv *inventory.Service, sku, name string, stock int64) *inventory.Item {
	t.Helper()
	item, err := inv.CreateItem(&inventory.CreateItemRequest{
		SKU:           sku,
		Name:          name,
		Kind:          inventory.ItemKindFinishedGood,
		UnitOfMeasure: "bottle",
		InitialStock:  decimal.NewFromInt(stock),
	}, "tester")
	if err != nil {
		t.Fatalf("seed product %s failed: %v", sku, err)
	}
	return item
}

func productStock(t *testing.T, inv *inventory.Service, id uint) decimal.Decimal {
	t.Helper()
	item, err := inv.GetItem(id)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	return item.Stock
}

func TestCreateSaleDeductsStockAndWritesLedger(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedProduct(t, inv, "WTR-500", "Water Bottle 500ml", 200)

	created, err := svc.CreateSale(&CreateSaleRequest{
		CustomerName: "Corner Shop",
		Items: []LineItemRequest{
			{ItemID: water.ID, Quantity: decimal.NewFromInt(24), UnitPrice: decimal.NewFromFloat(1.5)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	if !created.TotalAmount.Equal(decimal.NewFromInt(36)) {
		t.Errorf("expected total 36, got %s", created.TotalAmount)
	}
	if got := productStock(t, inv, water.ID); !got.Equal(decimal.NewFromInt(176)) {
		t.Errorf("expected stock 176 after sale, got %s", got)
	}

	deduction := inventory.AdjustmentSaleDeduction
	entries, err := inv.ListAdjustmentHistory(&deduction)
	if err != nil {
		t.Fatalf("list ledger failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 sale deduction entry, got %d", len(entries))
	}
	if !entries[0].QuantityAdjusted.Equal(decimal.NewFromInt(-24)) {
		t.Errorf("expected ledger quantity -24, got %s", entries[0].QuantityAdjusted)
	}
}

func TestCreateSaleShortfallAbortsWholeSale(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedProduct(t, inv, "WTR-500", "Water Bottle 500ml", 200)
	milk := seedProduct(t, inv, "MLK-1L", "Fresh Milk 1L", 5)

	_, err := svc.CreateSale(&CreateSaleRequest{
		CustomerName: "Corner Shop",
		Items: []LineItemRequest{
			{ItemID: water.ID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromFloat(1.5)},
			{ItemID: milk.ID, Quantity: decimal.NewFromInt(6), UnitPrice: decimal.NewFromFloat(2.0)},
		},
	}, "tester")
	if !apperr.IsKind(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}

	// Item A's deduction and the header must both have rolled back.
	if got := productStock(t, inv, water.ID); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected water stock unchanged at 200, got %s", got)
	}
	sales, err := svc.ListSales()
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 0 {
		t.Errorf("sale header survived rollback: %d sales", len(sales))
	}
}

func TestCreateSaleRequiresCustomerAndLines(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.CreateSale(&CreateSaleRequest{
		CustomerName: "Corner Shop",
		Items:        []LineItemRequest{},
	}, "tester")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError for empty lines, got %v", err)
	}
}

func TestUpdateSaleReplacesAllLineItems(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedProduct(t, inv, "WTR-500", "Water Bottle 500ml", 100)
	milk := seedProduct(t, inv, "MLK-1L", "Fresh Milk 1L", 50)

	created, err := svc.CreateSale(&CreateSaleRequest{
		CustomerName: "Corner Shop",
		Items: []LineItemRequest{
			{ItemID: water.ID, Quantity: decimal.NewFromInt(30), UnitPrice: decimal.NewFromInt(1)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	updated, err := svc.UpdateSale(created.ID, &UpdateSaleRequest{
		Items: []LineItemRequest{
			{ItemID: milk.ID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("update sale failed: %v", err)
	}

	// The final line set exactly matches the input.
	if len(updated.Items) != 1 || updated.Items[0].ItemID != milk.ID {
		t.Fatalf("expected single milk line after update, got %d lines", len(updated.Items))
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected total 20, got %s", updated.TotalAmount)
	}

	// Old deduction restored, new one applied.
	if got := productStock(t, inv, water.ID); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected water stock back to 100, got %s", got)
	}
	if got := productStock(t, inv, milk.ID); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected milk stock 40, got %s", got)
	}
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	svc, inv := newTestServices(t)
	water := seedProduct(t, inv, "WTR-500", "Water Bottle 500ml", 100)

	created, err := svc.CreateSale(&CreateSaleRequest{
		CustomerName: "Corner Shop",
		Items: []LineItemRequest{
			{ItemID: water.ID, Quantity: decimal.NewFromInt(25), UnitPrice: decimal.NewFromInt(1)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	if err := svc.DeleteSale(created.ID, "tester"); err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}

	if got := productStock(t, inv, water.ID); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected stock restored to 100, got %s", got)
	}
	if _, err := svc.GetSale(created.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected sale to be gone, got %v", err)
	}

	// The restore is itself on the ledger as RETURN_ADDITION.
	returns := inventory.AdjustmentReturnAddition
	entries, err := inv.ListAdjustmentHistory(&returns)
	if err != nil {
		t.Fatalf("list ledger failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 return addition entry, got %d", len(entries))
	}
}
