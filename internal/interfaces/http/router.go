package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/application/report"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/application/usecase"
	"github.com/jhoicas/pos-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC    *sales.SalesUseCase
	ReceiptUC  *receipt.UseCase
	Ledger     *inventory.StockLedger
	ProductUC  *usecase.ProductUseCase
	CustomerUC *usecase.CustomerUseCase
	ReportUC   *report.ReportUseCase
	JWTSecret  string
	AppName    string
	// HealthCheck verifica dependencias externas (DB, Redis). nil = siempre ok.
	HealthCheck func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Sales
	salesGroup := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.SalesUC, deps.ReceiptUC)
	salesGroup.Post("/", salesHandler.Create)
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesHandler.Receipt)
	salesGroup.Post("/:id/refund", salesHandler.Refund)
	salesGroup.Delete("/:id", RequireRole(jwt.RoleAdmin), salesHandler.Delete)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup.Post("/adjust", inventoryHandler.Adjust)
	invGroup.Post("/receive", inventoryHandler.Receive)
	invGroup.Get("/:productId/history", inventoryHandler.History)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/products", reportHandler.Products)
	reports.Get("/customers", reportHandler.Customers)
	reports.Get("/sell-through", reportHandler.SellThrough)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.HealthCheck(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.AppName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	}
}
