package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

func TestAverageUnitCost_Ponderado(t *testing.T) {
	batches := []entity.Batch{
		{Quantity: 10, UnitCost: decimal.NewFromInt(3)},
		{Quantity: 30, UnitCost: decimal.NewFromInt(7)},
	}
	// (30 + 210) / 40 = 6
	assert.True(t, AverageUnitCost(batches).Equal(decimal.NewFromInt(6)))
}

func TestAverageUnitCost_SinLotesEsCero(t *testing.T) {
	assert.True(t, AverageUnitCost(nil).IsZero())
}

func TestAverageUnitCost_Decimales(t *testing.T) {
	batches := []entity.Batch{
		{Quantity: 1, UnitCost: decimal.RequireFromString("1.10")},
		{Quantity: 2, UnitCost: decimal.RequireFromString("2.20")},
	}
	// 5.50 / 3
	got := AverageUnitCost(batches).Round(4)
	assert.Equal(t, "1.8333", got.String())
}

func TestAverageUnitCostFromLog_SoloCompras(t *testing.T) {
	four := decimal.NewFromInt(4)
	ten := decimal.NewFromInt(10)
	entries := []entity.TransactionLogEntry{
		{Type: entity.TransactionTypePurchase, Quantity: 5, UnitCost: &four},
		{Type: entity.TransactionTypeTransfer, Quantity: 5},
		{Type: entity.TransactionTypeAdjustment, Quantity: 100, UnitCost: &ten},
		{Type: entity.TransactionTypeSale, Quantity: -2},
		{Type: entity.TransactionTypePurchase, Quantity: 5, UnitCost: &ten},
		{Type: entity.TransactionTypePurchase, Quantity: 3},
	}
	assert.True(t, AverageUnitCostFromLog(entries).Equal(decimal.NewFromInt(7)))
}

func TestProductAverageCost_PrefiereLotes(t *testing.T) {
	one := decimal.NewFromInt(1)
	p := &entity.Product{Batches: []entity.Batch{{Quantity: 2, UnitCost: decimal.NewFromInt(9)}}}
	entries := []entity.TransactionLogEntry{{Type: entity.TransactionTypePurchase, Quantity: 2, UnitCost: &one}}

	assert.True(t, ProductAverageCost(p, entries).Equal(decimal.NewFromInt(9)))
	assert.True(t, ProductAverageCost(&entity.Product{}, entries).Equal(decimal.NewFromInt(1)))
}
