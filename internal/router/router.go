package router

import (
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/config"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/handler"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/ledger"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/middleware"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires every route group onto the
// ledger core.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	balances := ledger.NewBalanceStore(db, cfg.App.LedgerMaxRetries)
	txLedger := ledger.NewLedger(db, balances)
	goals := ledger.NewGoalTracker(db, balances)

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)

	// register/login need no token
	auth := r.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := r.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.PUT("/auth/edit-user", authHandler.EditUser)
	protected.GET("/me", handler.GetMe)

	admin := protected.Group("", middleware.AdminOnly())
	admin.GET("/auth/list-user", authHandler.ListUsers)
	admin.DELETE("/auth/delete-user/:id", authHandler.DeleteUser)

	balanceHandler := handler.NewBalanceHandler(db, balances)
	protected.POST("/initial-balance", balanceHandler.CreateInitialBalance)
	protected.GET("/user-balance", balanceHandler.GetUserBalance)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/list-category", categoryHandler.ListCategories)
	protected.GET("/list-goalcategory", categoryHandler.ListGoalCategories)
	admin.POST("/add-category", categoryHandler.CreateCategory)
	admin.PUT("/edit-category/:id", categoryHandler.UpdateCategory)
	admin.DELETE("/delete-category/:id", categoryHandler.DeleteCategory)
	admin.POST("/add-goalcategory", categoryHandler.CreateGoalCategory)
	admin.PUT("/edit-goalcategory/:id", categoryHandler.UpdateGoalCategory)
	admin.DELETE("/delete-goalcategory/:id", categoryHandler.DeleteGoalCategory)

	txHandler := handler.NewTransactionHandler(txLedger, cfg.App.PageSize)
	for _, kind := range []models.TransactionKind{models.KindIncome, models.KindExpense} {
		group := protected.Group("/" + string(kind))
		group.POST("/add", txHandler.Create(kind))
		group.GET("/list", txHandler.List(kind))
		group.PUT("/edit/:id", txHandler.Update)
		group.DELETE("/delete/:id", txHandler.Delete)
	}

	goalHandler := handler.NewGoalHandler(goals, cfg.App.PageSize)
	goal := protected.Group("/goal")
	goal.POST("/add", goalHandler.Create)
	goal.GET("/list", goalHandler.List)
	goal.PUT("/edit/:id", goalHandler.Update)
	goal.DELETE("/delete/:id", goalHandler.Delete)
	goal.DELETE("/complete/:id", goalHandler.Complete)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	auditHandler := handler.NewAuditHandler(db)
	admin.GET("/logs", auditHandler.ListLogs)

	return r
}
