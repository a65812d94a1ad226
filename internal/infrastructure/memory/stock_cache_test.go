package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

func TestStockCache_NoPisaVersionMasNueva(t *testing.T) {
	ctx := context.Background()
	c := NewStockCache()

	got, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, inventory.StockSnapshot{ProductID: "p1", ShopStock: 5, Version: 3}))
	require.NoError(t, c.Set(ctx, inventory.StockSnapshot{ProductID: "p1", ShopStock: 1, Version: 2}))
	got, err = c.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.ShopStock)
	assert.Equal(t, int64(3), got.Version)

	require.NoError(t, c.Set(ctx, inventory.StockSnapshot{ProductID: "p1", ShopStock: 9, Version: 4}))
	got, err = c.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9, got.ShopStock)

	require.NoError(t, c.Delete(ctx, "p1"))
	got, err = c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
