// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/domain/user"
	"github.com/your-org/bottling-erp/internal/interfaces/http/handlers"
	"github.com/your-org/bottling-erp/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group onto the versioned router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupInventoryRoutes(rg, db, redisClient, cfg)
	SetupSaleRoutes(rg, db, redisClient, cfg)
	SetupInvoiceRoutes(rg, db, redisClient, cfg)
	SetupPurchaseRoutes(rg, db, redisClient, cfg)
	SetupProductionRoutes(rg, db, redisClient, cfg)
	SetupQualityRoutes(rg, db, redisClient, cfg)
	SetupAccountRoutes(rg, db, redisClient, cfg)
	SetupAdminRoutes(rg, db, redisClient, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupInventoryRoutes sets up item catalog and stock ledger routes
func SetupInventoryRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)

	items := rg.Group("/items")
	items.Use(middleware.AuthMiddleware(cfg))
	{
		items.GET("", inventoryHandler.ListItems)
		items.GET("/low-stock", inventoryHandler.LowStockItems)
		items.GET("/:id", inventoryHandler.GetItem)

		writes := items.Group("")
		writes.Use(middleware.RequireRoles(user.RoleInventory))
		{
			writes.POST("", inventoryHandler.CreateItem)
			writes.PUT("/:id", inventoryHandler.UpdateItem)
		}
	}

	inventory := rg.Group("/inventory")
	inventory.Use(middleware.AuthMiddleware(cfg))
	{
		inventory.GET("/deliveries", inventoryHandler.ListDeliveries)
		inventory.GET("/adjustments", inventoryHandler.ListAdjustments)
		inventory.GET("/adjustments/pending", inventoryHandler.PendingSubmissions)
		inventory.GET("/adjustments/:id", inventoryHandler.GetAdjustment)

		writes := inventory.Group("")
		writes.Use(middleware.RequireRoles(user.RoleInventory))
		{
			writes.POST("/deliveries", inventoryHandler.ReceiveDelivery)
			writes.POST("/usage", inventoryHandler.RecordUsage)
			writes.POST("/adjustments", inventoryHandler.ManualAdjust)
			writes.POST("/adjustments/batch", inventoryHandler.BatchAdjust)
			writes.POST("/submissions", inventoryHandler.SubmitForApproval)
		}

		// Approving, rewriting or reversing ledger entries is admin territory
		admin := inventory.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/submissions/:id/approve", inventoryHandler.ApproveSubmission)
			admin.POST("/submissions/:id/reject", inventoryHandler.RejectSubmission)
			admin.PUT("/adjustments/:id", inventoryHandler.EditAdjustment)
			admin.DELETE("/adjustments/:id", inventoryHandler.DeleteAdjustment)
		}
	}
}

// SetupSaleRoutes sets up sale related routes
func SetupSaleRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	saleHandler := handlers.NewSaleHandler(db, cfg)

	sales := rg.Group("/sales")
	sales.Use(middleware.AuthMiddleware(cfg))
	{
		sales.GET("", saleHandler.ListSales)
		sales.GET("/:id", saleHandler.GetSale)

		writes := sales.Group("")
		writes.Use(middleware.RequireRoles(user.RoleSales))
		{
			writes.POST("", saleHandler.CreateSale)
			writes.PUT("/:id", saleHandler.UpdateSale)
		}

		admin := sales.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.DELETE("/:id", saleHandler.DeleteSale)
		}
	}
}

// SetupInvoiceRoutes sets up invoice related routes
func SetupInvoiceRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)

	invoices := rg.Group("/invoices")
	invoices.Use(middleware.AuthMiddleware(cfg))
	{
		invoices.GET("", invoiceHandler.ListInvoices)
		invoices.GET("/:id", invoiceHandler.GetInvoice)
		invoices.GET("/:id/pdf", invoiceHandler.DownloadPDF)

		writes := invoices.Group("")
		writes.Use(middleware.RequireRoles(user.RoleSales))
		{
			writes.POST("", invoiceHandler.CreateInvoice)
			writes.PUT("/:id", invoiceHandler.UpdateInvoice)
			writes.PUT("/:id/items", invoiceHandler.SetLineItems)
			writes.POST("/:id/issue", invoiceHandler.IssueInvoice)
			writes.POST("/:id/pay", invoiceHandler.MarkPaid)
		}
	}
}

// SetupPurchaseRoutes sets up purchase order routes
func SetupPurchaseRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	purchaseHandler := handlers.NewPurchaseHandler(db, cfg)

	orders := rg.Group("/purchase-orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", purchaseHandler.ListOrders)
		orders.GET("/:id", purchaseHandler.GetOrder)

		writes := orders.Group("")
		writes.Use(middleware.RequireRoles(user.RoleInventory))
		{
			writes.POST("", purchaseHandler.CreateOrder)
			writes.PUT("/:id", purchaseHandler.SetLineItems)
			writes.POST("/:id/submit", purchaseHandler.SubmitOrder)
			writes.POST("/:id/receive", purchaseHandler.ReceiveOrder)
			writes.POST("/:id/cancel", purchaseHandler.CancelOrder)
		}
	}
}

// SetupProductionRoutes sets up production batch routes
func SetupProductionRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productionHandler := handlers.NewProductionHandler(db, cfg)

	batches := rg.Group("/production/batches")
	batches.Use(middleware.AuthMiddleware(cfg))
	{
		batches.GET("", productionHandler.ListBatches)
		batches.GET("/:id", productionHandler.GetBatch)

		writes := batches.Group("")
		writes.Use(middleware.RequireRoles(user.RoleInventory))
		{
			writes.POST("", productionHandler.StartBatch)
			writes.POST("/:id/complete", productionHandler.CompleteBatch)
			writes.POST("/:id/cancel", productionHandler.CancelBatch)
		}
	}
}

// SetupQualityRoutes sets up lab quality test routes
func SetupQualityRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	qualityHandler := handlers.NewQualityHandler(db, cfg)

	tests := rg.Group("/quality-tests")
	tests.Use(middleware.AuthMiddleware(cfg))
	{
		tests.GET("", qualityHandler.ListTests)
		tests.GET("/:id", qualityHandler.GetTest)

		writes := tests.Group("")
		writes.Use(middleware.RequireRoles(user.RoleLab))
		{
			writes.POST("", qualityHandler.RecordTest)
			writes.PUT("/:id", qualityHandler.UpdateTest)
		}

		admin := tests.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.DELETE("/:id", qualityHandler.DeleteTest)
		}
	}
}

// SetupAccountRoutes sets up ledger account, receipt and credit note routes
func SetupAccountRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	accountHandler := handlers.NewAccountHandler(db, cfg)

	accounts := rg.Group("/accounts")
	accounts.Use(middleware.AuthMiddleware(cfg))
	{
		accounts.GET("", accountHandler.ListAccounts)
		accounts.GET("/:code", accountHandler.GetAccount)
		accounts.GET("/:code/balance", accountHandler.GetBalance)

		writes := accounts.Group("")
		writes.Use(middleware.RequireRoles(user.RoleSales))
		{
			writes.POST("", accountHandler.CreateAccount)
			writes.PUT("/:code", accountHandler.UpdateAccount)
		}
	}

	receipts := rg.Group("/receipts")
	receipts.Use(middleware.AuthMiddleware(cfg))
	{
		receipts.GET("", accountHandler.ListReceipts)

		writes := receipts.Group("")
		writes.Use(middleware.RequireRoles(user.RoleSales))
		{
			writes.POST("", accountHandler.RecordReceipt)
		}
	}

	creditNotes := rg.Group("/credit-notes")
	creditNotes.Use(middleware.AuthMiddleware(cfg))
	{
		creditNotes.GET("", accountHandler.ListCreditNotes)

		writes := creditNotes.Group("")
		writes.Use(middleware.RequireRoles(user.RoleSales))
		{
			writes.POST("", accountHandler.IssueCreditNote)
		}
	}
}

// SetupAdminRoutes sets up user administration routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	adminHandler := handlers.NewAdminHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/users", adminHandler.CreateUser)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/deactivate", adminHandler.DeactivateUser)
		admin.POST("/users/:id/activate", adminHandler.ActivateUser)
	}
}
