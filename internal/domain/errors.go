package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrNothingToRefund  = errors.New("no hay nada por reembolsar")
	ErrIdempotencyInUse = errors.New("la clave de idempotencia está en uso")
)

// ValidationError transacción candidata mal formada. Se rechaza antes de escribir.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para construir un *ValidationError.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError referencia a una venta, producto o variante inexistente.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound atajo para construir un *NotFoundError.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// NothingToRefundError la venta no tiene cantidades pendientes o ya está reembolsada.
type NothingToRefundError struct {
	SaleID string
	Reason string
}

func (e *NothingToRefundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("venta %s: %s", e.SaleID, ErrNothingToRefund.Error())
	}
	return fmt.Sprintf("venta %s: %s (%s)", e.SaleID, ErrNothingToRefund.Error(), e.Reason)
}

func (e *NothingToRefundError) Unwrap() error { return ErrNothingToRefund }

// Códigos de advertencia.
const (
	WarningNegativeStock    = "NEGATIVE_STOCK"
	WarningProfitRecomputed = "PROFIT_RECOMPUTED"
)

// ConsistencyWarning advertencia no fatal. No se retorna como error: viaja en el resultado.
type ConsistencyWarning struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	VariantID string `json:"variant_id,omitempty"`
	SaleID    string `json:"sale_id,omitempty"`
}

func (w ConsistencyWarning) String() string {
	return w.Code + ": " + w.Message
}
