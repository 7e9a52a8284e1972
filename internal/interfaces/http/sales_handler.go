package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
)

// HeaderIdempotencyKey reintentos con la misma clave devuelven la venta ya registrada.
const HeaderIdempotencyKey = "Idempotency-Key"

// SalesHandler ventas, devoluciones, reembolsos y comprobantes (protegido).
type SalesHandler struct {
	uc      *sales.SalesUseCase
	receipt *receipt.UseCase
}

// NewSalesHandler construye el handler. receipt puede ser nil (sin comprobantes PDF).
func NewSalesHandler(uc *sales.SalesUseCase, receiptUC *receipt.UseCase) *SalesHandler {
	return &SalesHandler{uc: uc, receipt: receiptUC}
}

// Create godoc
// @Summary      Registrar venta o devolución
// @Description  Valida, calcula totales, descuenta stock y guarda la transacción de forma atómica.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Clave de idempotencia"
// @Param        body             body    dto.CreateSaleRequest  true   "Transacción"
// @Success      201  {object}  dto.SaleResultResponse
// @Success      200  {object}  dto.SaleResultResponse  "Repetición con la misma clave"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cmd := sales.ProcessSaleCommand{
		WorkspaceID:    ws,
		Actor:          actor(c),
		Type:           in.Type,
		OriginalSaleID: in.OriginalSaleID,
		Discount:       in.Discount,
		Payments:       toPayments(in.Payments),
		CustomerID:     in.CustomerID,
		IdempotencyKey: strings.TrimSpace(c.Get(HeaderIdempotencyKey)),
		Note:           in.Note,
	}
	for _, it := range in.Items {
		cmd.Items = append(cmd.Items, sales.SaleItemInput{
			ProductID:          it.ProductID,
			VariantID:          it.VariantID,
			Quantity:           it.Quantity,
			UnitRetailPrice:    it.UnitPrice,
			OriginalLineItemID: it.OriginalLineItemID,
		})
	}
	res, err := h.uc.ProcessSale(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toSaleResult(res))
}

// Refund godoc
// @Summary      Reembolsar una venta
// @Description  Sin items se devuelve todo lo pendiente. Descuento e impuesto se asignan proporcionalmente.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la venta"
// @Param        body  body  dto.RefundRequest  false  "Líneas y desglose de pagos"
// @Success      201  {object}  dto.SaleResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/refund [post]
func (h *SalesHandler) Refund(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	var in dto.RefundRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	cmd := sales.RefundCommand{
		WorkspaceID: ws,
		Actor:       actor(c),
		SaleID:      c.Params("id"),
		Payments:    toPayments(in.Payments),
		Note:        in.Note,
	}
	for _, it := range in.Items {
		cmd.Items = append(cmd.Items, sales.RefundItemInput{LineItemID: it.LineItemID, Quantity: it.Quantity})
	}
	res, err := h.uc.Refund(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResult(res))
}

// GetByID godoc
// @Summary      Obtener venta con sus devoluciones
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	detail, err := h.uc.GetSale(c.UserContext(), ws, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SaleDetailResponse{Sale: toSaleResponse(detail.Sale), Warnings: detail.Warnings}
	for _, r := range detail.Returns {
		out.Returns = append(out.Returns, toSaleResponse(r))
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas y devoluciones
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := pagination(c)
	list, err := h.uc.ListSales(c.UserContext(), ws, from, to, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, toSaleResponse(s))
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar venta o devolución (solo admin)
// @Description  Elimina la venta con sus devoluciones y su auditoría de stock. El stock no cambia.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta o devolución"
// @Success      200  {object}  dto.DeleteSaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SalesHandler) Delete(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	res, err := h.uc.DeleteSale(c.UserContext(), sales.DeleteSaleCommand{
		WorkspaceID: ws,
		Actor:       actor(c),
		SaleID:      c.Params("id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DeleteSaleResponse{
		DeletedReturnCount:     res.DeletedReturnCount,
		DeletedAdjustmentCount: res.DeletedAdjustmentCount,
		ParentSaleID:           res.ParentSaleID,
	})
}

// Receipt godoc
// @Summary      Descargar comprobante PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta o devolución"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	if h.receipt == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "comprobantes deshabilitados"})
	}
	pdf, filename, err := h.receipt.Download(c.UserContext(), ws, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

func toSaleResult(res *sales.SaleResult) dto.SaleResultResponse {
	return dto.SaleResultResponse{
		Sale:     toSaleResponse(res.Sale),
		Warnings: res.Warnings,
		Replayed: res.Replayed,
	}
}
