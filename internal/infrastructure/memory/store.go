// Package memory implementa los repositorios y el TxRunner sobre mapas en memoria.
// Se usa cuando no hay DATABASE_URL (desarrollo) y en las pruebas de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner   = (*Store)(nil)
	_ sales.LedgerTxRunner = (*Store)(nil)
)

// dataset estado completo del store. Las transacciones trabajan sobre una copia.
type dataset struct {
	sales       map[string]*entity.Sale
	products    map[string]*entity.Product
	customers   map[string]*entity.Customer
	adjustments []*entity.InventoryAdjustment
}

func newDataset() *dataset {
	return &dataset{
		sales:     make(map[string]*entity.Sale),
		products:  make(map[string]*entity.Product),
		customers: make(map[string]*entity.Customer),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		sales:       make(map[string]*entity.Sale, len(d.sales)),
		products:    make(map[string]*entity.Product, len(d.products)),
		customers:   make(map[string]*entity.Customer, len(d.customers)),
		adjustments: make([]*entity.InventoryAdjustment, len(d.adjustments)),
	}
	for k, v := range d.sales {
		c.sales[k] = v.Clone()
	}
	for k, v := range d.products {
		c.products[k] = v.Clone()
	}
	for k, v := range d.customers {
		cu := *v
		c.customers[k] = &cu
	}
	for i, a := range d.adjustments {
		cp := *a
		c.adjustments[i] = &cp
	}
	return c
}

// Store contenedor en memoria. Un único escritor a la vez (writeMu); lectores concurrentes
// ven siempre el último estado confirmado.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	data    *dataset
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// binding ata los repositorios al estado confirmado (tx == nil) o a la copia de una transacción.
type binding struct {
	store *Store
	tx    *dataset
}

func (b binding) read(fn func(d *dataset)) {
	if b.tx != nil {
		fn(b.tx)
		return
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	fn(b.store.data)
}

func (b binding) write(fn func(d *dataset) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.writeMu.Lock()
	defer b.store.writeMu.Unlock()
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.data)
}

// begin toma el lock de escritura y copia el estado confirmado.
func (s *Store) begin() *dataset {
	s.writeMu.Lock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

// finish publica la copia si commit es true y libera el lock de escritura.
func (s *Store) finish(tx *dataset, commit bool) {
	if commit {
		s.mu.Lock()
		s.data = tx
		s.mu.Unlock()
	}
	s.writeMu.Unlock()
}

func (s *Store) runTx(ctx context.Context, fn func(b binding) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.begin()
	committed := false
	defer func() { s.finish(tx, committed) }()
	if err := fn(binding{store: s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	adjRepo repository.InventoryAdjustmentRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.runTx(ctx, func(b binding) error {
		return fn(&AdjustmentRepo{b: b}, &StockRepo{b: b}, &ProductRepo{b: b})
	})
}

// RunLedger implementa sales.LedgerTxRunner.
func (s *Store) RunLedger(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	stockRepo repository.StockRepository,
	adjRepo repository.InventoryAdjustmentRepository,
) error) error {
	return s.runTx(ctx, func(b binding) error {
		return fn(&SaleRepo{b: b}, &StockRepo{b: b}, &AdjustmentRepo{b: b})
	})
}

// Repositorios sobre el estado confirmado (fuera de transacción).

func (s *Store) Sales() *SaleRepo             { return &SaleRepo{b: binding{store: s}} }
func (s *Store) Products() *ProductRepo       { return &ProductRepo{b: binding{store: s}} }
func (s *Store) Customers() *CustomerRepo     { return &CustomerRepo{b: binding{store: s}} }
func (s *Store) Stock() *StockRepo            { return &StockRepo{b: binding{store: s}} }
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{b: binding{store: s}} }
