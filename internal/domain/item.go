package domain

import "time"

// Item represents a tracked inventory record.
type Item struct {
	ID            int64
	Name          string
	Description   string
	Quantity      int64
	Price         float64
	Category      string
	SKU           string
	Supplier      string
	Location      string
	MinStockLevel int64
	CreatedBy     int64
	CreatedByName string
	UpdatedBy     int64
	UpdatedByName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowStock reports whether the on-hand quantity has fallen below the
// configured minimum stock level.
func (i Item) LowStock() bool {
	return i.Quantity < i.MinStockLevel
}

// ItemFilter narrows item listings. Zero values mean "no restriction".
type ItemFilter struct {
	Category string
	Search   string
	LowStock bool
}

// ItemStats aggregates the whole inventory.
type ItemStats struct {
	TotalItems    int64
	LowStockItems int64
	TotalValue    float64
	Categories    int64
}
