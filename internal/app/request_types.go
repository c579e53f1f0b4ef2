package app

import (
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest is the input for a manual stock correction.
type AdjustStockRequest struct {
	ProductID int
	Quantity  decimal.Decimal // positive adds, negative removes
	Reason    string
}

// CheckoutRequest carries the checkout wizard answers.
type CheckoutRequest struct {
	CustomerID *int // overrides the editor's customer when set
	Payment    core.PaymentInfo
	Shipping   core.ShippingInfo
	Notes      string
}
