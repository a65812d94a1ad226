package entity

// Location es una de las dos ubicaciones fijas de inventario.
type Location string

const (
	LocationWarehouse Location = "warehouse" // bodega
	LocationShop      Location = "shop"      // tienda
)

// Locations lista las ubicaciones en orden estable.
var Locations = []Location{LocationWarehouse, LocationShop}

// Valid indica si la ubicación es una de las conocidas.
func (l Location) Valid() bool {
	return l == LocationWarehouse || l == LocationShop
}

// StockCounters contadores por ubicación.
type StockCounters struct {
	Warehouse int `json:"warehouse_stock"`
	Shop      int `json:"shop_stock"`
}

// Get devuelve el contador de la ubicación.
func (c StockCounters) Get(loc Location) int {
	if loc == LocationShop {
		return c.Shop
	}
	return c.Warehouse
}

// Add suma delta al contador de la ubicación.
func (c *StockCounters) Add(loc Location, delta int) {
	if loc == LocationShop {
		c.Shop += delta
		return
	}
	c.Warehouse += delta
}

// Total suma ambas ubicaciones.
func (c StockCounters) Total() int {
	return c.Warehouse + c.Shop
}
