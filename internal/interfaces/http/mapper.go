package http

import (
	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:              s.ID,
		PublicID:        s.PublicID,
		Type:            s.Type,
		Status:          s.Status,
		OriginalSaleID:  s.OriginalSaleID,
		Date:            s.Date,
		Items:           make([]dto.LineItemResponse, 0, len(s.Items)),
		Subtotal:        s.Subtotal,
		Discount:        s.Discount,
		Tax:             s.Tax,
		Total:           s.Total,
		COGS:            s.COGS,
		Profit:          s.Profit,
		Payments:        make([]dto.PaymentDTO, 0, len(s.Payments)),
		ChangeDue:       s.ChangeDue,
		SalespersonID:   s.SalespersonID,
		SalespersonName: s.SalespersonName,
		CustomerID:      s.CustomerID,
		Note:            s.Note,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.LineItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			VariantID:        it.VariantID,
			Name:             it.Name,
			SKU:              it.SKU,
			UnitRetailPrice:  it.UnitRetailPrice,
			UnitCostPrice:    it.UnitCostPrice,
			Quantity:         it.Quantity,
			ReturnedQuantity: it.ReturnedQuantity,
			OriginalLineID:   it.OriginalLineID,
		})
	}
	for _, pm := range s.Payments {
		out.Payments = append(out.Payments, dto.PaymentDTO{Method: pm.Method, Amount: pm.Amount})
	}
	return out
}

func toPayments(in []dto.PaymentDTO) []entity.Payment {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.Payment, 0, len(in))
	for _, p := range in {
		out = append(out, entity.Payment{Method: p.Method, Amount: p.Amount})
	}
	return out
}

func toAdjustmentResponse(a *entity.InventoryAdjustment) dto.AdjustmentResponse {
	return dto.AdjustmentResponse{
		ID:            a.ID,
		ProductID:     a.ProductID,
		VariantID:     a.VariantID,
		Date:          a.Date,
		QuantityDelta: a.QuantityDelta,
		Reason:        a.Reason,
		TransactionID: a.TransactionID,
		StockAfter:    a.StockAfter,
		CreatedBy:     a.CreatedBy,
	}
}
