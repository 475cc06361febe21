// internal/domain/purchase/service_test.go
package purchase

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
		&PurchaseOrder{}, &PurchaseItem{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	cfg := &config.Config{}
	return NewService(db, cfg), inventory.NewService(db, cfg)
}

func seedMaterial(t *testing.T, inv *inventory.Service, sku, name string, stock int64) *inventory.Item {
	t.Helper()
	item, err := inv.CreateItem(&inventory.CreateItemRequest{
		SKU:           sku,
		Name:          name,
		Kind:          inventory.ItemKindRawMaterial,
		UnitOfMeasure: "pcs",
		InitialStock:  decimal.NewFromInt(stock),
	}, "tester")
	if err != nil {
		t.Fatalf("seed material %s failed: %v", sku, err)
	}
	return item
}

func TestReceiveSubmittedOrderRaisesStock(t *testing.T) {
	svc, inv := newTestServices(t)
	caps := seedMaterial(t, inv, "CAP-001", "Bottle Cap", 100)

	order, err := svc.CreateOrder(&CreateOrderRequest{
		Supplier: "Cap Supplies Ltd",
		Submit:   true,
		Items: []LineItemRequest{
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(500), UnitPrice: decimal.NewFromFloat(0.05)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	received, err := svc.Receive(order.ID, "tester")
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if received.Status != OrderStatusReceived {
		t.Errorf("expected received status, got %s", received.Status)
	}
	if received.ReceivedAt == nil {
		t.Errorf("expected received_at to be set")
	}

	item, err := inv.GetItem(caps.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if !item.Stock.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected stock 600 after receipt, got %s", item.Stock)
	}

	addition := inventory.AdjustmentAddition
	entries, err := inv.ListAdjustmentHistory(&addition)
	if err != nil {
		t.Fatalf("list ledger failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 ADDITION entry, got %d", len(entries))
	}
}

func TestReceiveDraftOrderFails(t *testing.T) {
	svc, inv := newTestServices(t)
	caps := seedMaterial(t, inv, "CAP-001", "Bottle Cap", 100)

	order, err := svc.CreateOrder(&CreateOrderRequest{
		Supplier: "Cap Supplies Ltd",
		Items: []LineItemRequest{
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(500), UnitPrice: decimal.NewFromFloat(0.05)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.Receive(order.ID, "tester"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation receiving a draft, got %v", err)
	}

	item, err := inv.GetItem(caps.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if !item.Stock.Equal(decimal.NewFromInt(100)) {
		t.Errorf("stock changed by failed receipt: %s", item.Stock)
	}
}

func TestSetLineItemsOnlyWhileDraft(t *testing.T) {
	svc, inv := newTestServices(t)
	caps := seedMaterial(t, inv, "CAP-001", "Bottle Cap", 0)
	labels := seedMaterial(t, inv, "LABEL-001", "Bottle Label", 0)

	order, err := svc.CreateOrder(&CreateOrderRequest{
		Supplier: "Cap Supplies Ltd",
		Items: []LineItemRequest{
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(100), UnitPrice: decimal.NewFromInt(1)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	updated, err := svc.SetLineItems(order.ID, []LineItemRequest{
		{ItemID: labels.ID, Quantity: decimal.NewFromInt(200), UnitPrice: decimal.NewFromInt(2)},
	})
	if err != nil {
		t.Fatalf("set line items failed: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].ItemID != labels.ID {
		t.Fatalf("expected replaced line set, got %d lines", len(updated.Items))
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected total 400, got %s", updated.TotalAmount)
	}

	if _, err := svc.Submit(order.ID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.SetLineItems(order.ID, []LineItemRequest{
		{ItemID: caps.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
	}); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden editing a submitted order, got %v", err)
	}
}

func TestCancelReceivedOrderFails(t *testing.T) {
	svc, inv := newTestServices(t)
	caps := seedMaterial(t, inv, "CAP-001", "Bottle Cap", 0)

	order, err := svc.CreateOrder(&CreateOrderRequest{
		Supplier: "Cap Supplies Ltd",
		Submit:   true,
		Items: []LineItemRequest{
			{ItemID: caps.ID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := svc.Receive(order.ID, "tester"); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	if _, err := svc.Cancel(order.ID); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation cancelling a received order, got %v", err)
	}
}
