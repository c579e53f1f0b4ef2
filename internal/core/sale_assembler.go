package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LinePayload is the wire shape of a quotation or sale line item.
type LinePayload struct {
	ProductID   *int            `json:"producto_id"`
	ProductName string          `json:"producto_nombre"`
	ProductCode string          `json:"producto_codigo"`
	Quantity    decimal.Decimal `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ToLineItem maps a wire line back into a draft row. Subtotal is recomputed by the Draft.
func (p LinePayload) ToLineItem() LineItem {
	return LineItem{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		ProductCode: p.ProductCode,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		Subtotal:    p.Quantity.Mul(p.UnitPrice),
	}
}

// LineItemsFromPayload maps a backend detail listing into draft rows.
func LineItemsFromPayload(lines []LinePayload) []LineItem {
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = l.ToLineItem()
	}
	return out
}

// DeliveryMode is how the goods leave the store.
type DeliveryMode string

const (
	DeliveryPickup   DeliveryMode = "recojo"
	DeliveryShipping DeliveryMode = "envio"
)

// ShippingInfo is the delivery metadata captured at checkout.
type ShippingInfo struct {
	Mode      DeliveryMode
	Address   string
	Reference string
	Recipient string
	Phone     string
	Agency    string
}

// PaymentInfo is the payment metadata captured at checkout.
// A zero AmountPaid means the full total is being paid now.
type PaymentInfo struct {
	Method        PaymentMethod
	AmountPaid    decimal.Decimal
	OperationCode string
	LastDigits    string
}

// SaleInput is everything the assembler needs to build a submission.
type SaleInput struct {
	Items       []LineItem
	CustomerID  *int
	QuotationID *int
	Payment     PaymentInfo
	Shipping    ShippingInfo
	Session     *Session
	Notes       string
}

// ShippingPayload is the wire shape of delivery metadata.
type ShippingPayload struct {
	Address   string `json:"direccion"`
	Reference string `json:"referencia,omitempty"`
	Recipient string `json:"destinatario"`
	Phone     string `json:"telefono"`
	Agency    string `json:"agencia,omitempty"`
}

// SalePayload is the body submitted to the backend sales endpoint.
// Method-specific fields are omitted unless the method requires them.
type SalePayload struct {
	CustomerID    *int             `json:"cliente_id,omitempty"`
	QuotationID   *int             `json:"cotizacion_id,omitempty"`
	UserID        int              `json:"usuario_id,omitempty"`
	Lines         []LinePayload    `json:"detalle"`
	Total         decimal.Decimal  `json:"total"`
	TotalItems    decimal.Decimal  `json:"total_items"`
	TotalWithFee  decimal.Decimal  `json:"total_con_comision"`
	Method        PaymentMethod    `json:"metodo_pago"`
	AmountPaid    decimal.Decimal  `json:"monto_pagado"`
	OperationCode string           `json:"codigo_operacion,omitempty"`
	LastDigits    string           `json:"ultimos_digitos,omitempty"`
	Surcharge     *decimal.Decimal `json:"comision,omitempty"`
	Delivery      DeliveryMode     `json:"tipo_entrega"`
	Shipping      *ShippingPayload `json:"envio,omitempty"`
	Notes         string           `json:"observaciones,omitempty"`
}

// QuotationDetailPayload is the body of the update-detail endpoint.
type QuotationDetailPayload struct {
	Lines        []LinePayload   `json:"detalle"`
	Total        decimal.Decimal `json:"total"`
	TotalItems   decimal.Decimal `json:"total_items"`
	TotalWithFee decimal.Decimal `json:"total_con_comision"`
}

// QuotationPayload is the body used to create a quotation.
type QuotationPayload struct {
	CustomerID *int `json:"cliente_id,omitempty"`
	UserID     int  `json:"usuario_id,omitempty"`
	QuotationDetailPayload
}

// ValidationError lists every problem found while assembling a payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Problems, "; ")
}

// ErrEmptyDraft is returned when a submission has no line items.
var ErrEmptyDraft = errors.New("draft has no line items")

// AssembleSale validates input and maps it to the backend sale payload.
// It performs no I/O.
func AssembleSale(in SaleInput) (*SalePayload, error) {
	lines, err := linePayloads(in.Items)
	if err != nil {
		return nil, err
	}

	var problems []string
	method := in.Payment.Method
	if !method.Valid() {
		problems = append(problems, fmt.Sprintf("unknown payment method %q", method))
	}

	totals := ComputeTotals(in.Items, decimal.Zero)
	paid := in.Payment.AmountPaid
	switch {
	case paid.IsNegative():
		problems = append(problems, "amount paid must not be negative")
	case paid.IsZero():
		paid = totals.TotalAmount
	case paid.GreaterThan(totals.TotalAmount):
		problems = append(problems, fmt.Sprintf("amount paid %s exceeds total %s", paid.StringFixed(2), totals.TotalAmount.StringFixed(2)))
	}

	p := &SalePayload{
		CustomerID:  in.CustomerID,
		QuotationID: in.QuotationID,
		Lines:       lines,
		Method:      method,
		AmountPaid:  paid,
		Notes:       strings.TrimSpace(in.Notes),
		Delivery:    DeliveryPickup,
	}
	if in.Session != nil {
		p.UserID = in.Session.UserID
	}

	switch {
	case method.IsMobileWallet():
		code := strings.TrimSpace(in.Payment.OperationCode)
		if code == "" {
			problems = append(problems, fmt.Sprintf("operation code is required for %s", method))
		}
		p.OperationCode = code
	case method == PaymentTransfer:
		digits := strings.TrimSpace(in.Payment.LastDigits)
		if !isLastDigits(digits) {
			problems = append(problems, "transfer requires the last 4 digits of the account")
		}
		p.LastDigits = digits
	}

	surcharge := Surcharge(method, paid)
	if method == PaymentCard {
		p.Surcharge = &surcharge
	}
	totals = ComputeTotals(in.Items, surcharge)
	p.Total = totals.TotalAmount
	p.TotalItems = totals.TotalQuantity
	p.TotalWithFee = totals.TotalWithSurcharge

	if in.Shipping.Mode == DeliveryShipping {
		sp, shipProblems := shippingPayload(in.Shipping)
		problems = append(problems, shipProblems...)
		p.Delivery = DeliveryShipping
		p.Shipping = sp
	} else if in.Shipping.Mode != "" && in.Shipping.Mode != DeliveryPickup {
		problems = append(problems, fmt.Sprintf("unknown delivery mode %q", in.Shipping.Mode))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return p, nil
}

// AssembleQuotationDetail maps draft rows to the update-detail payload.
func AssembleQuotationDetail(items []LineItem) (*QuotationDetailPayload, error) {
	lines, err := linePayloads(items)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(items, decimal.Zero)
	return &QuotationDetailPayload{
		Lines:        lines,
		Total:        totals.TotalAmount,
		TotalItems:   totals.TotalQuantity,
		TotalWithFee: totals.TotalWithSurcharge,
	}, nil
}

func linePayloads(items []LineItem) ([]LinePayload, error) {
	if len(items) == 0 {
		return nil, ErrEmptyDraft
	}
	var problems []string
	lines := make([]LinePayload, 0, len(items))
	for i, it := range items {
		if !it.HasProduct() {
			problems = append(problems, fmt.Sprintf("row %d: %v", i+1, ErrNoProduct))
		}
		if !it.Quantity.IsPositive() {
			problems = append(problems, fmt.Sprintf("row %d: quantity must be greater than 0", i+1))
		}
		if it.UnitPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("row %d: unit price must not be negative", i+1))
		}
		lines = append(lines, LinePayload{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductCode: it.ProductCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Quantity.Mul(it.UnitPrice),
		})
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return lines, nil
}

func shippingPayload(s ShippingInfo) (*ShippingPayload, []string) {
	var problems []string
	sp := &ShippingPayload{
		Address:   strings.TrimSpace(s.Address),
		Reference: strings.TrimSpace(s.Reference),
		Recipient: strings.TrimSpace(s.Recipient),
		Phone:     strings.TrimSpace(s.Phone),
		Agency:    strings.TrimSpace(s.Agency),
	}
	if sp.Address == "" {
		problems = append(problems, "shipping address is required")
	}
	if sp.Recipient == "" {
		problems = append(problems, "shipping recipient is required")
	}
	return sp, problems
}

func isLastDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
