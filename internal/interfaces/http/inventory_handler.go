package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
)

// InventoryHandler ajustes manuales, entradas de mercancía e historial de stock (protegido).
type InventoryHandler struct {
	ledger *inventory.StockLedger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  Suma delta (positivo o negativo) al stock con un motivo obligatorio. Stock negativo genera advertencia.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      201   {object}  dto.AdjustmentResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.AdjustStock(c.UserContext(), inventory.AdjustStockCommand{
		WorkspaceID: ws,
		UserID:      GetUserID(c),
		ProductID:   in.ProductID,
		VariantID:   in.VariantID,
		Delta:       in.Delta,
		Reason:      in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentResult(res))
}

// Receive godoc
// @Summary      Entrada de mercancía
// @Description  Suma quantity al stock (motivo "Stock Received"). Con unit_cost recalcula el costo promedio ponderado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "Entrada"
// @Success      201   {object}  dto.AdjustmentResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.ReceiveStock(c.UserContext(), inventory.ReceiveStockCommand{
		WorkspaceID: ws,
		UserID:      GetUserID(c),
		ProductID:   in.ProductID,
		VariantID:   in.VariantID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentResult(res))
}

// History godoc
// @Summary      Historial de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        from       query  string  false  "Desde"
// @Param        to         query  string  false  "Hasta"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockHistoryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := pagination(c)
	rows, err := h.ledger.History(c.UserContext(), ws, c.Params("productId"), from, to, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.StockHistoryResponse{
		Items: make([]dto.AdjustmentResponse, 0, len(rows)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, a := range rows {
		out.Items = append(out.Items, toAdjustmentResponse(a))
	}
	return c.JSON(out)
}

func toAdjustmentResult(res *inventory.AdjustmentResult) dto.AdjustmentResultResponse {
	return dto.AdjustmentResultResponse{
		Adjustment: toAdjustmentResponse(res.Adjustment),
		Warnings:   res.Warnings,
	}
}
