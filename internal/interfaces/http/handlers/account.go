// internal/interfaces/http/handlers/account.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/account"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// AccountHandler handles ledger account, receipt and credit note endpoints
type AccountHandler struct {
	service *account.Service
	config  *config.Config
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(db *gorm.DB, cfg *config.Config) *AccountHandler {
	return &AccountHandler{
		service: account.NewService(db, cfg),
		config:  cfg,
	}
}

// CreateAccount handles POST /accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req account.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	acc, err := h.service.CreateAccount(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Account created successfully", acc)
}

// UpdateAccount handles PUT /accounts/:code
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req account.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	acc, err := h.service.UpdateAccount(c.Param("code"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Account updated successfully", acc)
}

// GetAccount handles GET /accounts/:code
func (h *AccountHandler) GetAccount(c *gin.Context) {
	acc, err := h.service.GetAccount(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", acc)
}

// ListAccounts handles GET /accounts?type=
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var accountType *account.AccountType
	if raw := c.Query("type"); raw != "" {
		t := account.AccountType(raw)
		switch t {
		case account.AccountTypeCustomer, account.AccountTypeSupplier, account.AccountTypeRep:
			accountType = &t
		default:
			respondError(c, apperr.Validation("unknown account type '%s'", raw))
			return
		}
	}

	accounts, err := h.service.ListAccounts(accountType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", accounts)
}

// GetBalance handles GET /accounts/:code/balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	balance, err := h.service.GetBalance(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", balance)
}

// RecordReceipt handles POST /receipts
func (h *AccountHandler) RecordReceipt(c *gin.Context) {
	var req account.RecordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	receipt, err := h.service.RecordReceipt(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Receipt recorded successfully", receipt)
}

// ListReceipts handles GET /receipts?account_code=
func (h *AccountHandler) ListReceipts(c *gin.Context) {
	receipts, err := h.service.ListReceipts(c.Query("account_code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", receipts)
}

// IssueCreditNote handles POST /credit-notes
func (h *AccountHandler) IssueCreditNote(c *gin.Context) {
	var req account.IssueCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	note, err := h.service.IssueCreditNote(&req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Credit note issued successfully", note)
}

// ListCreditNotes handles GET /credit-notes?account_code=
func (h *AccountHandler) ListCreditNotes(c *gin.Context) {
	notes, err := h.service.ListCreditNotes(c.Query("account_code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", notes)
}
