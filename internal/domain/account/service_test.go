// internal/domain/account/service_test.go
package account

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/invoice"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServices(t *testing.T) (*Service, *invoice.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	models := []interface{}{
		&LedgerAccount{}, &Receipt{}, &CreditNote{},
		&invoice.Invoice{}, &invoice.InvoiceItem{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	cfg := &config.Config{}
	return NewService(db, cfg), invoice.NewService(db, cfg)
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode("C-2-NTH-042")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if code.Type != AccountTypeCustomer {
		t.Errorf("expected customer type, got %s", code.Type)
	}
	if code.PriceLevel != 2 {
		t.Errorf("expected price level 2, got %d", code.PriceLevel)
	}
	if code.Zone != "NTH" {
		t.Errorf("expected zone NTH, got %s", code.Zone)
	}
	if code.Sequence != 42 {
		t.Errorf("expected sequence 42, got %d", code.Sequence)
	}
	if code.String() != "C-2-NTH-042" {
		t.Errorf("round trip mismatch: %s", code.String())
	}

	// lowercase input normalizes
	code, err = ParseCode("s-1-sth-007")
	if err != nil {
		t.Fatalf("parse lowercase failed: %v", err)
	}
	if code.Type != AccountTypeSupplier || code.String() != "S-1-STH-007" {
		t.Errorf("expected normalized supplier code, got %s", code.String())
	}

	for _, bad := range []string{"", "X-1-NTH-001", "C-0-NTH-001", "C-1-NT-001", "C-1-NTH-1", "C1NTH001"} {
		if _, err := ParseCode(bad); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("expected Validation for %q, got %v", bad, err)
		}
	}
}

func TestCreateAccountDuplicateCodeConflict(t *testing.T) {
	svc, _ := newTestServices(t)

	acc, err := svc.CreateAccount(&CreateAccountRequest{
		AccountCode: "C-2-NTH-042",
		Name:        "Northside Grocers",
	})
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	if acc.Type != AccountTypeCustomer {
		t.Errorf("expected type derived from code, got %s", acc.Type)
	}

	_, err = svc.CreateAccount(&CreateAccountRequest{
		AccountCode: "c-2-nth-042",
		Name:        "Copycat",
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict on duplicate code, got %v", err)
	}
}

func TestBalanceDerivation(t *testing.T) {
	svc, inv := newTestServices(t)

	if _, err := svc.CreateAccount(&CreateAccountRequest{
		AccountCode: "C-1-NTH-001",
		Name:        "Northside Grocers",
	}); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	// a draft invoice does not count; an issued one does
	draft, err := inv.CreateInvoice(&invoice.CreateInvoiceRequest{
		AccountCode:  "C-1-NTH-001",
		CustomerName: "Northside Grocers",
		Items: []invoice.LineItemRequest{
			{Description: "Bottled Water 500ml x24", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(12)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	issued, err := inv.CreateInvoice(&invoice.CreateInvoiceRequest{
		AccountCode:  "C-1-NTH-001",
		CustomerName: "Northside Grocers",
		Items: []invoice.LineItemRequest{
			{Description: "Bottled Water 1L x12", Quantity: decimal.NewFromInt(20), UnitPrice: decimal.NewFromInt(10)},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if _, err := inv.IssueInvoice(issued.ID); err != nil {
		t.Fatalf("issue invoice failed: %v", err)
	}

	if _, err := svc.RecordReceipt(&RecordReceiptRequest{
		AccountCode: "C-1-NTH-001",
		Amount:      decimal.NewFromInt(50),
	}, "tester"); err != nil {
		t.Fatalf("record receipt failed: %v", err)
	}
	if _, err := svc.IssueCreditNote(&IssueCreditNoteRequest{
		AccountCode: "C-1-NTH-001",
		Amount:      decimal.NewFromInt(30),
		Notes:       "damaged crate",
	}, "tester"); err != nil {
		t.Fatalf("issue credit note failed: %v", err)
	}

	balance, err := svc.GetBalance("C-1-NTH-001")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Invoiced.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected invoiced 200 (draft excluded), got %s", balance.Invoiced)
	}
	if !balance.Outstanding.Equal(decimal.NewFromInt(120)) {
		t.Errorf("expected outstanding 120, got %s", balance.Outstanding)
	}

	// issuing the draft moves it into the balance
	if _, err := inv.IssueInvoice(draft.ID); err != nil {
		t.Fatalf("issue draft failed: %v", err)
	}
	balance, err = svc.GetBalance("C-1-NTH-001")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Outstanding.Equal(decimal.NewFromInt(240)) {
		t.Errorf("expected outstanding 240 after issuing draft, got %s", balance.Outstanding)
	}
}

func TestBalanceEmptyAccountIsZero(t *testing.T) {
	svc, _ := newTestServices(t)

	if _, err := svc.CreateAccount(&CreateAccountRequest{
		AccountCode: "R-3-WST-005",
		Name:        "Western Rep",
	}); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	balance, err := svc.GetBalance("R-3-WST-005")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Outstanding.IsZero() {
		t.Errorf("expected zero balance, got %s", balance.Outstanding)
	}
}

func TestReceiptRequiresExistingAccount(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.RecordReceipt(&RecordReceiptRequest{
		AccountCode: "C-1-NTH-999",
		Amount:      decimal.NewFromInt(10),
	}, "tester")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for missing account, got %v", err)
	}
}

func TestUpdateAccountKeepsCodeAndType(t *testing.T) {
	svc, _ := newTestServices(t)

	if _, err := svc.CreateAccount(&CreateAccountRequest{
		AccountCode: "S-1-STH-010",
		Name:        "Cap Supplies Ltd",
	}); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	name := "Cap Supplies (Pvt) Ltd"
	phone := "0771234567"
	updated, err := svc.UpdateAccount("S-1-STH-010", &UpdateAccountRequest{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("update account failed: %v", err)
	}
	if updated.Name != name || updated.Phone != phone {
		t.Errorf("update not applied")
	}
	if updated.AccountCode != "S-1-STH-010" || updated.Type != AccountTypeSupplier {
		t.Errorf("code or type changed on update")
	}
}
