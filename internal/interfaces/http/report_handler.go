package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/report"
)

// ReportHandler reportes por rango de fechas, recalculados desde las transacciones confirmadas.
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Products godoc
// @Summary      Desempeño por producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Success      200  {object}  dto.ProductPerformanceReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/products [get]
func (h *ReportHandler) Products(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ProductPerformance(c.UserContext(), ws, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Customers godoc
// @Summary      Resumen por cliente
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200  {object}  dto.CustomerSummaryReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/customers [get]
func (h *ReportHandler) Customers(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CustomerSummary(c.UserContext(), ws, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SellThrough godoc
// @Summary      Sell-through por producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200  {object}  dto.SellThroughReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sell-through [get]
func (h *ReportHandler) SellThrough(c *fiber.Ctx) error {
	ws, ok := requireWorkspace(c)
	if !ok {
		return nil
	}
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SellThrough(c.UserContext(), ws, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
