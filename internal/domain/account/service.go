// internal/domain/account/service.go
package account

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/domain/invoice"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles ledger account business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new account service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateAccountRequest represents a request to open a ledger account
type CreateAccountRequest struct {
	AccountCode string `json:"account_code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

// UpdateAccountRequest allows changing the contact snapshot of an account
type UpdateAccountRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// RecordReceiptRequest represents money received against an account
type RecordReceiptRequest struct {
	AccountCode string          `json:"account_code" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ReceivedAt  *time.Time      `json:"received_at"`
	Notes       string          `json:"notes"`
}

// IssueCreditNoteRequest represents a credit granted to an account
type IssueCreditNoteRequest struct {
	AccountCode string          `json:"account_code" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	IssuedAt    *time.Time      `json:"issued_at"`
	Notes       string          `json:"notes"`
}

// CreateAccount opens a ledger account. The account type is carried by the
// code itself, so it is parsed rather than accepted as a separate field.
func (s *Service) CreateAccount(req *CreateAccountRequest) (*LedgerAccount, error) {
	code, err := ParseCode(req.AccountCode)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("account name is required")
	}

	var count int64
	if err := s.db.Model(&LedgerAccount{}).Where("account_code = ?", code.String()).Count(&count).Error; err != nil {
		return nil, apperr.Storage("failed to check account code", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("account code %s already exists", code.String())
	}

	acc := &LedgerAccount{
		AccountCode: code.String(),
		Name:        strings.TrimSpace(req.Name),
		Type:        code.Type,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
	}
	if err := s.db.Create(acc).Error; err != nil {
		return nil, apperr.Storage("failed to create ledger account", err)
	}
	return acc, nil
}

// UpdateAccount changes contact fields. The code, and with it the type,
// never changes after creation.
func (s *Service) UpdateAccount(code string, req *UpdateAccountRequest) (*LedgerAccount, error) {
	acc, err := s.GetAccount(code)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("account name is required")
		}
		acc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		acc.Phone = *req.Phone
	}
	if req.Email != nil {
		acc.Email = *req.Email
	}
	if req.Address != nil {
		acc.Address = *req.Address
	}

	if err := s.db.Save(acc).Error; err != nil {
		return nil, apperr.Storage("failed to update ledger account", err)
	}
	return acc, nil
}

// GetAccount retrieves an account by its code
func (s *Service) GetAccount(code string) (*LedgerAccount, error) {
	parsed, err := ParseCode(code)
	if err != nil {
		return nil, err
	}

	var acc LedgerAccount
	err = s.db.Where("account_code = ?", parsed.String()).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("account %s not found", parsed.String())
	}
	if err != nil {
		return nil, apperr.Storage("failed to load ledger account", err)
	}
	return &acc, nil
}

// ListAccounts retrieves accounts, optionally filtered by type
func (s *Service) ListAccounts(accountType *AccountType) ([]LedgerAccount, error) {
	query := s.db.Order("account_code ASC")
	if accountType != nil {
		query = query.Where("type = ?", *accountType)
	}

	var accounts []LedgerAccount
	if err := query.Find(&accounts).Error; err != nil {
		return nil, apperr.Storage("failed to list ledger accounts", err)
	}
	return accounts, nil
}

// GetBalance derives the account's receivables position. Draft invoices do
// not owe anything yet; issued and paid ones count toward the invoiced sum.
func (s *Service) GetBalance(code string) (*Balance, error) {
	acc, err := s.GetAccount(code)
	if err != nil {
		return nil, err
	}

	invoiced, err := s.sumColumn(&invoice.Invoice{}, "total_amount",
		"account_code = ? AND status IN ?", acc.AccountCode,
		[]invoice.InvoiceStatus{invoice.InvoiceStatusIssued, invoice.InvoiceStatusPaid})
	if err != nil {
		return nil, err
	}
	received, err := s.sumColumn(&Receipt{}, "amount", "account_code = ?", acc.AccountCode)
	if err != nil {
		return nil, err
	}
	credited, err := s.sumColumn(&CreditNote{}, "amount", "account_code = ?", acc.AccountCode)
	if err != nil {
		return nil, err
	}

	return &Balance{
		AccountCode: acc.AccountCode,
		Invoiced:    invoiced,
		Received:    received,
		Credited:    credited,
		Outstanding: invoiced.Sub(received).Sub(credited),
	}, nil
}

// RecordReceipt stores money received against an existing account
func (s *Service) RecordReceipt(req *RecordReceiptRequest, recordedBy string) (*Receipt, error) {
	acc, err := s.GetAccount(req.AccountCode)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("receipt amount must be greater than zero")
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	receipt := &Receipt{
		ReceiptNumber: inventory.GenerateLogNumber("RCP", receivedAt),
		AccountCode:   acc.AccountCode,
		Amount:        req.Amount,
		ReceivedAt:    receivedAt,
		Notes:         req.Notes,
		RecordedBy:    recordedBy,
	}
	if err := s.db.Create(receipt).Error; err != nil {
		return nil, apperr.Storage("failed to record receipt", err)
	}
	return receipt, nil
}

// ListReceipts retrieves receipts, newest first, optionally for one account
func (s *Service) ListReceipts(accountCode string) ([]Receipt, error) {
	query := s.db.Order("received_at DESC, created_at DESC")
	if accountCode != "" {
		query = query.Where("account_code = ?", accountCode)
	}

	var receipts []Receipt
	if err := query.Find(&receipts).Error; err != nil {
		return nil, apperr.Storage("failed to list receipts", err)
	}
	return receipts, nil
}

// IssueCreditNote grants a credit against an existing account
func (s *Service) IssueCreditNote(req *IssueCreditNoteRequest, recordedBy string) (*CreditNote, error) {
	acc, err := s.GetAccount(req.AccountCode)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("credit note amount must be greater than zero")
	}

	issuedAt := time.Now().UTC()
	if req.IssuedAt != nil {
		issuedAt = req.IssuedAt.UTC()
	}

	note := &CreditNote{
		NoteNumber:  inventory.GenerateLogNumber("CRN", issuedAt),
		AccountCode: acc.AccountCode,
		Amount:      req.Amount,
		IssuedAt:    issuedAt,
		Notes:       req.Notes,
		RecordedBy:  recordedBy,
	}
	if err := s.db.Create(note).Error; err != nil {
		return nil, apperr.Storage("failed to issue credit note", err)
	}
	return note, nil
}

// ListCreditNotes retrieves credit notes, newest first, optionally for one
// account.
func (s *Service) ListCreditNotes(accountCode string) ([]CreditNote, error) {
	query := s.db.Order("issued_at DESC, created_at DESC")
	if accountCode != "" {
		query = query.Where("account_code = ?", accountCode)
	}

	var notes []CreditNote
	if err := query.Find(&notes).Error; err != nil {
		return nil, apperr.Storage("failed to list credit notes", err)
	}
	return notes, nil
}

func (s *Service) sumColumn(model interface{}, column, cond string, args ...interface{}) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.Model(model).
		Select("SUM(" + column + ")").
		Where(cond, args...).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, apperr.Storage("failed to aggregate balance", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
