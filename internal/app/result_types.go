package app

import "pos-admin/internal/core"

// ProductListResult is returned by ListProducts and SearchProducts.
type ProductListResult struct {
	Products []core.Product
	LowStock int
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
}

// QuotationListResult is returned by ListQuotations.
type QuotationListResult struct {
	Quotations []core.Quotation
}

// QuotationResult is returned by quotation reads and saves.
type QuotationResult struct {
	Quotation *core.Quotation
	Items     []core.LineItem
	Totals    core.Totals
}

// CheckoutResult is returned by Checkout.
type CheckoutResult struct {
	Sale    *core.Sale
	Payload *core.SalePayload
}

// UserListResult is returned by ListUsers.
type UserListResult struct {
	Users []core.User
}

// CartSuggestionResult is returned by SuggestCart.
type CartSuggestionResult struct {
	Proposal             *core.CartProposal
	Items                []core.LineItem
	Totals               core.Totals
	ClarificationMessage string
	IsClarification      bool
}
