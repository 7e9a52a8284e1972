package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/jhoicas/pos-ledger/docs"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/application/report"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/application/usecase"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pos-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-ledger/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// storage repositorios y transacciones del backend elegido (PostgreSQL o memoria).
type storage struct {
	txRunner interface {
		inventory.TxRunner
		sales.LedgerTxRunner
	}
	sales       repository.SaleRepository
	products    repository.ProductRepository
	customers   repository.CustomerRepository
	adjustments repository.InventoryAdjustmentRepository
	pool        *pgxpool.Pool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	idem, err := cache.NewIdempotencyStore(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.AllowFallback, log.Component("cache"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer idem.Close()

	settings := sales.StaticSettings{Value: salesSettings(cfg.Sales)}
	zl := log.Zerolog()

	ledger := inventory.NewStockLedger(st.txRunner, st.products, st.adjustments, zl)
	salesUC := sales.NewSalesUseCase(
		st.txRunner, ledger, st.sales, st.products, st.customers, settings, idem, zl,
	).WithIdempotencyTTL(cfg.Sales.IdempotencyTTL)
	productUC := usecase.NewProductUseCase(st.products, st.txRunner, ledger, zl)
	customerUC := usecase.NewCustomerUseCase(st.customers)
	reportUC := report.NewReportUseCase(st.sales, st.products, st.customers, settings, zl)

	// PDF: comprobante de venta o devolución
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	receiptUC := receipt.NewUseCase(st.sales, st.customers, settings, pdfGenerator, cfg.App.StoreName)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:    salesUC,
		ReceiptUC:  receiptUC,
		Ledger:     ledger,
		ProductUC:  productUC,
		CustomerUC: customerUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
		AppName:    cfg.App.Name,
		HealthCheck: func(ctx context.Context) error {
			if st.pool != nil {
				if err := st.pool.Ping(ctx); err != nil {
					return err
				}
			}
			return idem.Ping(ctx)
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta a PostgreSQL si está configurado; si no, usa el store en memoria.
func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if !cfg.Enabled() {
		log.Warn().Msg("sin base de datos configurada; los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			txRunner:    store,
			sales:       store.Sales(),
			products:    store.Products(),
			customers:   store.Customers(),
			adjustments: store.Adjustments(),
		}, nil
	}

	if cfg.Migrate {
		if err := postgres.Migrate(cfg.ConnectionString(), log.Component("migrate")); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:    postgres.NewTxRunner(pool),
		sales:       postgres.NewSaleRepository(pool),
		products:    postgres.NewProductRepository(pool),
		customers:   postgres.NewCustomerRepository(pool),
		adjustments: postgres.NewAdjustmentRepository(pool),
		pool:        pool,
	}, nil
}

func salesSettings(c config.SalesConfig) entity.Settings {
	return entity.Settings{
		TaxRate:           c.TaxRate,
		DiscountRate:      c.DiscountRate,
		DiscountThreshold: c.DiscountThreshold,
		IntegerCurrency:   c.IntegerCurrency,
		ChangeDueEnabled:  c.ChangeDue,
	}
}
