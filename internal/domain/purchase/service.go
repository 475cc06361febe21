// internal/domain/purchase/service.go
package purchase

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles purchase-order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new purchase service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// LineItemRequest represents one ordered line in a create/update request
type LineItemRequest struct {
	ItemID    uint            `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateOrderRequest represents purchase-order creation data
type CreateOrderRequest struct {
	Supplier  string            `json:"supplier" binding:"required"`
	OrderDate time.Time         `json:"order_date"`
	Notes     string            `json:"notes"`
	Submit    bool              `json:"submit"`
	Items     []LineItemRequest `json:"items" binding:"required"`
}

// CreateOrder creates a purchase order with its lines in one transaction
func (s *Service) CreateOrder(req *CreateOrderRequest, recordedBy string) (*PurchaseOrder, error) {
	if req.Supplier == "" {
		return nil, apperr.Validation("supplier is required")
	}
	if err := validateLineItems(req.Items); err != nil {
		return nil, err
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}
	status := OrderStatusDraft
	if req.Submit {
		status = OrderStatusSubmitted
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order := &PurchaseOrder{
		OrderNumber: inventory.GenerateLogNumber("PO", orderDate),
		Supplier:    req.Supplier,
		Status:      status,
		OrderDate:   orderDate,
		TotalAmount: decimal.Zero,
		Notes:       req.Notes,
		RecordedBy:  recordedBy,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to create purchase order", err)
	}

	total, err := insertLineItems(tx, order.ID, req.Items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(order).Update("total_amount", total).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update order total", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit purchase order", err)
	}
	return s.GetOrder(order.ID)
}

// SetLineItems replaces all order lines; allowed only while the order is a
// draft
func (s *Service) SetLineItems(orderID uint, items []LineItemRequest) (*PurchaseOrder, error) {
	if err := validateLineItems(items); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := loadOrder(tx, orderID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !order.CanBeEdited() {
		tx.Rollback()
		return nil, apperr.Forbidden("purchase order %s is %s and cannot be edited", order.OrderNumber, order.Status)
	}

	if err := tx.Where("purchase_order_id = ?", order.ID).Delete(&PurchaseItem{}).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to delete order items", err)
	}

	total, err := insertLineItems(tx, order.ID, items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// order.Items still holds the deleted lines; keep the total update from
	// upserting them back.
	if err := tx.Model(order).Omit(clause.Associations).Update("total_amount", total).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update order total", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit order items", err)
	}
	return s.GetOrder(orderID)
}

// Submit moves a draft order to submitted
func (s *Service) Submit(orderID uint) (*PurchaseOrder, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != OrderStatusDraft {
		return nil, apperr.Validation("purchase order %s is already %s", order.OrderNumber, order.Status)
	}
	if err := s.db.Model(order).Update("status", OrderStatusSubmitted).Error; err != nil {
		return nil, apperr.Storage("failed to submit purchase order", err)
	}
	order.Status = OrderStatusSubmitted
	return order, nil
}

// Receive marks a submitted order received and raises stock per line
// through the ledger, all in one transaction.
func (s *Service) Receive(orderID uint, recordedBy string) (*PurchaseOrder, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := loadOrder(tx, orderID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if order.Status != OrderStatusSubmitted {
		tx.Rollback()
		return nil, apperr.Validation("purchase order %s is %s, only submitted orders can be received", order.OrderNumber, order.Status)
	}

	for _, line := range order.Items {
		if _, err := inventory.ApplyAdjustment(tx, line.ItemID, line.Quantity,
			inventory.AdjustmentAddition,
			fmt.Sprintf("Received purchase order %s", order.OrderNumber), recordedBy, time.Now().UTC()); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := tx.Model(order).Updates(map[string]interface{}{
		"status":      OrderStatusReceived,
		"received_at": now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Storage("failed to update purchase order", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Storage("failed to commit receipt", err)
	}
	return s.GetOrder(orderID)
}

// Cancel cancels a draft or submitted order
func (s *Service) Cancel(orderID uint) (*PurchaseOrder, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, apperr.Validation("purchase order %s is %s and cannot be cancelled", order.OrderNumber, order.Status)
	}
	if err := s.db.Model(order).Update("status", OrderStatusCancelled).Error; err != nil {
		return nil, apperr.Storage("failed to cancel purchase order", err)
	}
	order.Status = OrderStatusCancelled
	return order, nil
}

// GetOrder retrieves a single purchase order with items
func (s *Service) GetOrder(orderID uint) (*PurchaseOrder, error) {
	return loadOrder(s.db, orderID)
}

// ListOrders retrieves purchase orders, newest first, optionally by status
func (s *Service) ListOrders(status OrderStatus) ([]PurchaseOrder, error) {
	query := s.db.Preload("Items")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []PurchaseOrder
	if err := query.Order("order_date DESC, created_at DESC").Find(&orders).Error; err != nil {
		return nil, apperr.Storage("failed to list purchase orders", err)
	}
	return orders, nil
}

func insertLineItems(tx *gorm.DB, orderID uint, items []LineItemRequest) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range items {
		item, err := inventory.GetItemForUpdate(tx, line.ItemID)
		if err != nil {
			return decimal.Zero, err
		}

		lineTotal := line.UnitPrice.Mul(line.Quantity)
		purchaseItem := &PurchaseItem{
			PurchaseOrderID: orderID,
			ItemID:          item.ID,
			ItemName:        item.Name,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			TotalPrice:      lineTotal,
			UnitOfMeasure:   item.UnitOfMeasure,
		}
		if err := tx.Create(purchaseItem).Error; err != nil {
			return decimal.Zero, apperr.Storage("failed to create order item", err)
		}
		total = total.Add(lineTotal)
	}
	return total, nil
}

func loadOrder(tx *gorm.DB, orderID uint) (*PurchaseOrder, error) {
	var order PurchaseOrder
	if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order %d not found", orderID)
		}
		return nil, apperr.Storage("failed to retrieve purchase order", err)
	}
	return &order, nil
}

func validateLineItems(items []LineItemRequest) error {
	if len(items) == 0 {
		return apperr.Validation("purchase order must contain at least one line item")
	}
	for i, line := range items {
		if !line.Quantity.IsPositive() {
			return apperr.Validation("line %d: quantity must be greater than zero", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperr.Validation("line %d: unit price must not be negative", i+1)
		}
	}
	return nil
}
