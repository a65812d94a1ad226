package dto

import "github.com/jhoicas/pos-inventario/internal/domain/entity"

// ToProductResponse convierte la entidad en respuesta HTTP.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	batches := make([]BatchResponse, 0, len(p.Batches))
	for _, b := range p.Batches {
		batches = append(batches, BatchResponse{
			ID:           b.ID,
			PurchaseDate: b.PurchaseDate,
			Quantity:     b.Quantity,
			UnitCost:     b.UnitCost,
			Supplier:     b.Supplier,
			BatchNumber:  b.BatchNumber,
		})
	}
	return &ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		CategoryID:     p.CategoryID,
		Price:          p.Price,
		WarehouseStock: p.WarehouseStock,
		ShopStock:      p.ShopStock,
		TotalStock:     p.TotalStock(),
		StockLevel:     p.StockLevel(),
		TotalSold:      p.TotalSold,
		Batches:        batches,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToTransactionLogEntryResponse convierte una entrada del log.
func ToTransactionLogEntryResponse(e *entity.TransactionLogEntry) TransactionLogEntryResponse {
	return TransactionLogEntryResponse{
		ID:           e.ID,
		ProductID:    e.ProductID,
		Type:         e.Type,
		Quantity:     e.Quantity,
		FromLocation: string(e.FromLocation),
		ToLocation:   string(e.ToLocation),
		UnitCost:     e.UnitCost,
		BatchNumber:  e.BatchNumber,
		Reference:    e.Reference,
		Notes:        e.Notes,
		UserID:       e.UserID,
		CreatedAt:    e.CreatedAt,
	}
}

// ToSaleResponse convierte una venta con sus líneas.
func ToSaleResponse(s *entity.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			UnitCost:  it.UnitCost,
			LineTotal: it.LineTotal,
			LineCost:  it.LineCost,
			Profit:    it.Profit,
		})
	}
	return SaleResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		PaymentMethod: s.PaymentMethod,
		Notes:         s.Notes,
		TotalAmount:   s.TotalAmount,
		TotalCost:     s.TotalCost,
		TotalProfit:   s.TotalProfit,
		Items:         items,
		CreatedAt:     s.CreatedAt,
	}
}
