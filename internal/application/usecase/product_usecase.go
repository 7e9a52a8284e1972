package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// ProductUseCase catálogo de productos y variantes. Cost y Stock se manejan vía el ledger de stock.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner inventory.TxRunner
	ledger   *inventory.StockLedger
	logger   zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, txRunner inventory.TxRunner, ledger *inventory.StockLedger, logger zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{
		repo:     repo,
		txRunner: txRunner,
		ledger:   ledger,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// Create crea un producto. El stock inicial (del producto o de cada variante) se registra
// en la misma transacción como ajuste "Initial Stock".
func (uc *ProductUseCase) Create(ctx context.Context, workspaceID, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.NewValidationError("sku", "sku y name son requeridos")
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, domain.NewValidationError("price", "precio y costo no pueden ser negativos")
	}
	if in.InitialStock < 0 {
		return nil, domain.NewValidationError("initial_stock", "el stock inicial no puede ser negativo")
	}
	if len(in.Variants) > 0 && in.InitialStock != 0 {
		return nil, domain.NewValidationError("initial_stock", "con variantes el stock inicial va en cada variante")
	}
	existing, err := uc.repo.GetByWorkspaceAndSKU(ctx, workspaceID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		SKU:         in.SKU,
		Name:        in.Name,
		Price:       in.Price,
		Cost:        in.Cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	initial := make(map[string]int) // variantID ("" = producto) → stock inicial
	if in.InitialStock > 0 {
		initial[""] = in.InitialStock
	}
	for i, v := range in.Variants {
		if strings.TrimSpace(v.Name) == "" {
			return nil, domain.NewValidationError("variants", "la variante %d no tiene nombre", i)
		}
		if v.Price.IsNegative() || v.Cost.IsNegative() || v.InitialStock < 0 {
			return nil, domain.NewValidationError("variants", "la variante %d tiene valores negativos", i)
		}
		variant := entity.Variant{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			SKU:       strings.TrimSpace(v.SKU),
			Name:      strings.TrimSpace(v.Name),
			Price:     v.Price,
			Cost:      v.Cost,
		}
		product.Variants = append(product.Variants, variant)
		if v.InitialStock > 0 {
			initial[variant.ID] = v.InitialStock
		}
	}

	err = uc.txRunner.Run(ctx, func(
		adjRepo repository.InventoryAdjustmentRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		for variantID, qty := range initial {
			if _, _, err := uc.ledger.ApplyDeltaInTx(ctx, adjRepo, stockRepo, inventory.DeltaInput{
				WorkspaceID: workspaceID,
				ProductID:   product.ID,
				VariantID:   variantID,
				Delta:       qty,
				Reason:      entity.AdjustmentReasonInitialStock,
				UserID:      userID,
				Date:        now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored, err := uc.repo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("workspace_id", workspaceID).Str("product_id", product.ID).Str("sku", product.SKU).Msg("producto creado")
	return toProductResponse(stored), nil
}

// GetByID obtiene un producto del workspace; nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, workspaceID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.WorkspaceID != workspaceID {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre y precio. No permite modificar Cost ni Stock.
func (uc *ProductUseCase) Update(ctx context.Context, workspaceID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.WorkspaceID != workspaceID {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "el nombre no puede quedar vacío")
		}
		product.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.NewValidationError("price", "el precio no puede ser negativo")
		}
		product.Price = *in.Price
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del workspace con paginación.
func (uc *ProductUseCase) List(ctx context.Context, workspaceID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByWorkspace(ctx, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		SKU:         p.SKU,
		Name:        p.Name,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.CurrentStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, dto.VariantResponse{
			ID:    v.ID,
			SKU:   v.SKU,
			Name:  v.Name,
			Price: v.Price,
			Cost:  v.Cost,
			Stock: v.Stock,
		})
	}
	return out
}
