package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry within a sale or quotation draft.
// Subtotal is derived: every Draft mutation recomputes it as Quantity × UnitPrice.
type LineItem struct {
	ProductID   *int            `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// HasProduct reports whether a catalog product has been chosen for the row.
func (li LineItem) HasProduct() bool {
	return li.ProductID != nil
}

func (li *LineItem) recompute() {
	li.Subtotal = li.Quantity.Mul(li.UnitPrice)
}

// NumericPolicy decides what happens to blank, malformed or negative numeric input.
type NumericPolicy int

const (
	// RejectInvalid treats blank input as 0 but refuses malformed or negative values,
	// leaving the row untouched.
	RejectInvalid NumericPolicy = iota
	// CoerceToZero silently replaces anything unusable with 0.
	CoerceToZero
)

// ParseNumericPolicy maps a config value ("strict", "lenient") to a NumericPolicy.
func ParseNumericPolicy(s string) (NumericPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict", "reject":
		return RejectInvalid, nil
	case "lenient", "coerce":
		return CoerceToZero, nil
	default:
		return RejectInvalid, fmt.Errorf("unknown numeric policy %q (want strict or lenient)", s)
	}
}

func (p NumericPolicy) String() string {
	if p == CoerceToZero {
		return "lenient"
	}
	return "strict"
}

var (
	// ErrRowOutOfRange is returned when a row index does not address an existing line item.
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrNoProduct is returned when a product-bound operation targets a row without a product.
	ErrNoProduct = errors.New("row has no product selected")
)

// InputError describes numeric input that the RejectInvalid policy refused.
type InputError struct {
	Row    int
	Field  string
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q: %s", e.Row+1, e.Field, e.Input, e.Reason)
}

// ParseNumber parses user-typed numeric text. Blank input is 0; a lone comma is
// accepted as the decimal separator ("2,5").
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// Draft is the ordered, editable set of line items for one editing session.
// All mutations are synchronous; each recomputes the touched row's subtotal
// and then the totals over the whole sequence.
type Draft struct {
	mu     sync.Mutex
	items  []LineItem
	totals Totals
	policy NumericPolicy
}

// NewDraft creates an empty draft that applies policy to textual numeric input.
func NewDraft(policy NumericPolicy) *Draft {
	return &Draft{policy: policy}
}

// NewDraftFrom creates a draft pre-loaded with items (e.g. mapped from a backend detail fetch).
func NewDraftFrom(policy NumericPolicy, items []LineItem) *Draft {
	d := NewDraft(policy)
	d.Replace(items)
	return d
}

// Policy returns the numeric input policy of the draft.
func (d *Draft) Policy() NumericPolicy {
	return d.policy
}

// Replace swaps the whole sequence. Negative quantities or prices are clamped to 0.
func (d *Draft) Replace(items []LineItem) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.items = make([]LineItem, len(items))
	for i, it := range items {
		if it.Quantity.IsNegative() {
			it.Quantity = decimal.Zero
		}
		if it.UnitPrice.IsNegative() {
			it.UnitPrice = decimal.Zero
		}
		it.recompute()
		d.items[i] = it
	}
	d.recomputeTotals()
}

// Items returns a copy of the current line items.
func (d *Draft) Items() []LineItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of rows.
func (d *Draft) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Row returns a copy of the line item at row.
func (d *Draft) Row(row int) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkRow(row); err != nil {
		return LineItem{}, err
	}
	return d.items[row], nil
}

// Totals returns the totals computed after the last mutation, without surcharge.
func (d *Draft) Totals() Totals {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totals
}

// TotalsWithSurcharge derives totals with the given surcharge added.
func (d *Draft) TotalsWithSurcharge(surcharge decimal.Decimal) Totals {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ComputeTotals(d.items, surcharge)
}

// AddRow appends a zeroed row and returns its index.
func (d *Draft) AddRow() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, LineItem{Quantity: decimal.Zero, UnitPrice: decimal.Zero, Subtotal: decimal.Zero})
	d.recomputeTotals()
	return len(d.items) - 1
}

// RemoveRow deletes the row at position row. Later rows shift down by one, so
// callers must not reuse row indices captured before the removal.
func (d *Draft) RemoveRow(row int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkRow(row); err != nil {
		return err
	}
	d.items = append(d.items[:row], d.items[row+1:]...)
	d.recomputeTotals()
	return nil
}

// SetQuantity sets the quantity of row.
func (d *Draft) SetQuantity(row int, qty decimal.Decimal) error {
	return d.setNumber(row, "quantity", qty.String(), qty, nil, func(li *LineItem, v decimal.Decimal) { li.Quantity = v })
}

// SetUnitPrice sets the unit price of row.
func (d *Draft) SetUnitPrice(row int, price decimal.Decimal) error {
	return d.setNumber(row, "unit price", price.String(), price, nil, func(li *LineItem, v decimal.Decimal) { li.UnitPrice = v })
}

// SetQuantityText parses raw according to the draft's NumericPolicy and sets the quantity.
func (d *Draft) SetQuantityText(row int, raw string) error {
	v, err := ParseNumber(raw)
	return d.setNumber(row, "quantity", raw, v, err, func(li *LineItem, v decimal.Decimal) { li.Quantity = v })
}

// SetUnitPriceText parses raw according to the draft's NumericPolicy and sets the unit price.
func (d *Draft) SetUnitPriceText(row int, raw string) error {
	v, err := ParseNumber(raw)
	return d.setNumber(row, "unit price", raw, v, err, func(li *LineItem, v decimal.Decimal) { li.UnitPrice = v })
}

// SetProduct overwrites the row's product identity, name, code and unit price
// (taken from the product's general price). Quantity is kept.
func (d *Draft) SetProduct(row int, p Product) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkRow(row); err != nil {
		return err
	}
	id := p.ID
	li := &d.items[row]
	li.ProductID = &id
	li.ProductName = p.Name
	li.ProductCode = p.Code
	li.UnitPrice = p.GeneralPrice
	if li.UnitPrice.IsNegative() {
		li.UnitPrice = decimal.Zero
	}
	li.recompute()
	d.recomputeTotals()
	return nil
}

func (d *Draft) setNumber(row int, field, raw string, v decimal.Decimal, parseErr error, apply func(*LineItem, decimal.Decimal)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkRow(row); err != nil {
		return err
	}

	switch {
	case parseErr != nil:
		if d.policy != CoerceToZero {
			return &InputError{Row: row, Field: field, Input: raw, Reason: "not a number"}
		}
		v = decimal.Zero
	case v.IsNegative():
		if d.policy != CoerceToZero {
			return &InputError{Row: row, Field: field, Input: raw, Reason: "must not be negative"}
		}
		v = decimal.Zero
	}

	li := &d.items[row]
	apply(li, v)
	li.recompute()
	d.recomputeTotals()
	return nil
}

func (d *Draft) checkRow(row int) error {
	if row < 0 || row >= len(d.items) {
		return fmt.Errorf("%w: %d (draft has %d rows)", ErrRowOutOfRange, row, len(d.items))
	}
	return nil
}

func (d *Draft) recomputeTotals() {
	d.totals = ComputeTotals(d.items, decimal.Zero)
}
