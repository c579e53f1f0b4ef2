package core

import "github.com/shopspring/decimal"

// Totals are the aggregates derived from a sequence of line items.
type Totals struct {
	TotalQuantity      decimal.Decimal `json:"total_quantity"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	TotalWithSurcharge decimal.Decimal `json:"total_with_surcharge"`
}

// ComputeTotals derives totals from items. It keeps no state between calls.
func ComputeTotals(items []LineItem, surcharge decimal.Decimal) Totals {
	qty := decimal.Zero
	amount := decimal.Zero
	for _, it := range items {
		qty = qty.Add(it.Quantity)
		amount = amount.Add(it.Quantity.Mul(it.UnitPrice))
	}
	return Totals{
		TotalQuantity:      qty,
		TotalAmount:        amount,
		TotalWithSurcharge: amount.Add(surcharge),
	}
}
