package core

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as exposed by the backend product endpoints.
// GeneralPrice is the list price copied into a line item when the product is selected.
type Product struct {
	ID           int             `json:"id"`
	Code         string          `json:"codigo"`
	Name         string          `json:"nombre"`
	Description  string          `json:"descripcion"`
	GeneralPrice decimal.Decimal `json:"precio_general"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"stock_minimo"`
	IsActive     bool            `json:"activo"`
}

// LowStock reports whether on-hand stock is at or below the configured minimum.
func (p Product) LowStock() bool {
	return p.Stock.LessThanOrEqual(p.MinStock)
}

// StockAdjustment is a signed correction to a product's on-hand quantity.
type StockAdjustment struct {
	ProductID int             `json:"-"`
	Quantity  decimal.Decimal `json:"cantidad"` // positive adds stock, negative removes it
	Reason    string          `json:"motivo"`
}
