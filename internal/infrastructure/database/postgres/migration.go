// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/account"
	"github.com/your-org/bottling-erp/internal/domain/inventory"
	"github.com/your-org/bottling-erp/internal/domain/invoice"
	"github.com/your-org/bottling-erp/internal/domain/production"
	"github.com/your-org/bottling-erp/internal/domain/purchase"
	"github.com/your-org/bottling-erp/internal/domain/quality"
	"github.com/your-org/bottling-erp/internal/domain/sale"
	"github.com/your-org/bottling-erp/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{
		db:  db,
		cfg: cfg,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Dependency order: items before everything that references them
	models := []interface{}{
		&user.User{},

		&inventory.Item{},
		&inventory.StockAdjustment{},
		&inventory.TankDelivery{},

		&sale.Sale{},
		&sale.SaleItem{},

		&invoice.Invoice{},
		&invoice.InvoiceItem{},

		&purchase.PurchaseOrder{},
		&purchase.PurchaseItem{},

		&production.ProductionBatch{},
		&production.BatchInput{},

		&quality.QualityTest{},

		&account.LedgerAccount{},
		&account.Receipt{},
		&account.CreditNote{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("Creating additional database indexes...")

	indexes := []string{
		// Item indexes
		"CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind)",
		"CREATE INDEX IF NOT EXISTS idx_items_name ON items(name)",

		// Ledger indexes; history is read newest-first per item or per type
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_item_date ON stock_adjustments(item_id, adjustment_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_type_date ON stock_adjustments(adjustment_type, adjustment_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_recorded_by ON stock_adjustments(recorded_by)",

		// Delivery indexes
		"CREATE INDEX IF NOT EXISTS idx_tank_deliveries_sku_date ON tank_deliveries(tank_sku, received_at DESC)",

		// Sale indexes
		"CREATE INDEX IF NOT EXISTS idx_sales_account_code ON sales(account_code)",
		"CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_sale_items_item ON sale_items(item_id)",

		// Invoice indexes
		"CREATE INDEX IF NOT EXISTS idx_invoices_account_status ON invoices(account_code, status)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_due_date ON invoices(due_date)",
		"CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id)",

		// Purchase indexes
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_status_date ON purchase_orders(status, order_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier ON purchase_orders(supplier)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_items_order ON purchase_items(purchase_order_id)",

		// Production indexes
		"CREATE INDEX IF NOT EXISTS idx_production_batches_status_date ON production_batches(status, started_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_production_batches_product ON production_batches(product_item_id)",
		"CREATE INDEX IF NOT EXISTS idx_production_batch_inputs_batch ON production_batch_inputs(batch_id)",

		// Quality indexes
		"CREATE INDEX IF NOT EXISTS idx_quality_tests_source_date ON quality_tests(source, tested_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_quality_tests_result ON quality_tests(result)",

		// Account indexes; balance derivation filters by account code
		"CREATE INDEX IF NOT EXISTS idx_receipts_account_date ON receipts(account_code, received_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_credit_notes_account_date ON credit_notes(account_code, issued_at DESC)",

		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("Created %d indexes (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("Seeding initial data...")

	if err := m.seedTankItems(); err != nil {
		return fmt.Errorf("failed to seed tank items: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("Initial data seeded")
	return nil
}

// seedTankItems creates the well-known tank inventory records the delivery
// endpoints address by SKU.
func (m *Migration) seedTankItems() error {
	tanks := []inventory.Item{
		{
			SKU:           m.cfg.Inventory.RawWaterTankSKU,
			Name:          "Raw Water Tank",
			Kind:          inventory.ItemKindTank,
			UnitOfMeasure: "L",
			Stock:         decimal.Zero,
		},
		{
			SKU:           m.cfg.Inventory.MilkTankSKU,
			Name:          "Raw Milk Tank",
			Kind:          inventory.ItemKindTank,
			UnitOfMeasure: "L",
			Stock:         decimal.Zero,
		},
	}

	for _, tank := range tanks {
		var existing inventory.Item
		result := m.db.Where("sku = ?", tank.SKU).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&tank).Error; err != nil {
				return err
			}
			log.Printf("Created tank item: %s", tank.SKU)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("ChangeMe9"), m.cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Site",
		LastName:  "Admin",
		Role:      user.RoleAdmin,
		IsActive:  true,
	}
	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("Created admin user: admin@example.com")
	return nil
}

// GetTableInfo logs row counts per table, useful when developing
func (m *Migration) GetTableInfo() {
	tables := []string{
		"users", "items", "stock_adjustments", "tank_deliveries",
		"sales", "sale_items", "invoices", "invoice_items",
		"purchase_orders", "purchase_items",
		"production_batches", "production_batch_inputs",
		"quality_tests", "ledger_accounts", "receipts", "credit_notes",
	}

	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err == nil {
			log.Printf("Table %s: %d rows", table, count)
		}
	}
}
