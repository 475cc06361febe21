// internal/domain/invoice/service_test.go
package invoice

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&Invoice{}, &InvoiceItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewService(db, &config.Config{})
}

func createDraft(t *testing.T, svc *Service) *Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(&CreateInvoiceRequest{
		AccountCode:  "C-1-EST-001",
		CustomerName: "Corner Shop",
		Items: []LineItemRequest{
			{Description: "Water Bottle 500ml", Quantity: decimal.NewFromInt(24), UnitPrice: decimal.NewFromFloat(1.5)},
			{Description: "Fresh Milk 1L", Quantity: decimal.NewFromInt(6), UnitPrice: decimal.NewFromInt(2)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	return inv
}

func TestCreateInvoiceComputesTotal(t *testing.T) {
	svc := newTestService(t)
	inv := createDraft(t, svc)

	if inv.Status != InvoiceStatusDraft {
		t.Errorf("expected draft status, got %s", inv.Status)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(48)) {
		t.Errorf("expected total 48, got %s", inv.TotalAmount)
	}
	if len(inv.Items) != 2 {
		t.Errorf("expected 2 lines, got %d", len(inv.Items))
	}
}

func TestSetLineItemsReplacesChildrenAndRecomputesTotal(t *testing.T) {
	svc := newTestService(t)
	inv := createDraft(t, svc)

	updated, err := svc.SetLineItems(inv.ID, []LineItemRequest{
		{Description: "Water Bottle 1.5L", Quantity: decimal.NewFromInt(12), UnitPrice: decimal.NewFromInt(3)},
	})
	if err != nil {
		t.Fatalf("set line items failed: %v", err)
	}

	if len(updated.Items) != 1 {
		t.Fatalf("expected 1 line after replace, got %d", len(updated.Items))
	}
	if updated.Items[0].Description != "Water Bottle 1.5L" {
		t.Errorf("unexpected line: %s", updated.Items[0].Description)
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(36)) {
		t.Errorf("expected total 36, got %s", updated.TotalAmount)
	}
}

func TestSetLineItemsRejectsEmptySet(t *testing.T) {
	svc := newTestService(t)
	inv := createDraft(t, svc)

	_, err := svc.SetLineItems(inv.ID, []LineItemRequest{})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	svc := newTestService(t)
	inv := createDraft(t, svc)

	if _, err := svc.MarkPaid(inv.ID); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected paying a draft to fail, got %v", err)
	}

	issued, err := svc.IssueInvoice(inv.ID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if issued.Status != InvoiceStatusIssued {
		t.Errorf("expected issued, got %s", issued.Status)
	}

	if _, err := svc.IssueInvoice(inv.ID); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected double issue to fail, got %v", err)
	}

	paid, err := svc.MarkPaid(inv.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != InvoiceStatusPaid {
		t.Errorf("expected paid, got %s", paid.Status)
	}

	// Paid invoices are frozen.
	if _, err := svc.SetLineItems(inv.ID, []LineItemRequest{
		{Description: "Anything", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
	}); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden editing a paid invoice, got %v", err)
	}
}

func TestListInvoicesByAccount(t *testing.T) {
	svc := newTestService(t)
	createDraft(t, svc)
	createDraft(t, svc)

	all, err := svc.ListInvoices("")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(all))
	}

	byAccount, err := svc.ListInvoices("C-1-EST-001")
	if err != nil {
		t.Fatalf("list by account failed: %v", err)
	}
	if len(byAccount) != 2 {
		t.Errorf("expected 2 invoices for account, got %d", len(byAccount))
	}

	none, err := svc.ListInvoices("C-9-XXX-999")
	if err != nil {
		t.Fatalf("list by unknown account failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no invoices for unknown account, got %d", len(none))
	}
}
