package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize cleans up LLM output: codes are upper-cased and trimmed, blank or
// "null" quantities become "1", and duplicate codes are merged.
func (p *CartProposal) Normalize() {
	merged := make([]CartProposalLine, 0, len(p.Lines))
	index := make(map[string]int)

	for _, line := range p.Lines {
		line.ProductCode = strings.ToUpper(strings.TrimSpace(line.ProductCode))
		q := strings.TrimSpace(line.Quantity)
		if q == "" || strings.EqualFold(q, "null") {
			q = "1"
		}
		line.Quantity = q

		if i, ok := index[line.ProductCode]; ok {
			a, errA := decimal.NewFromString(merged[i].Quantity)
			b, errB := decimal.NewFromString(line.Quantity)
			if errA == nil && errB == nil {
				merged[i].Quantity = a.Add(b).String()
				continue
			}
		}
		index[line.ProductCode] = len(merged)
		merged = append(merged, line)
	}
	p.Lines = merged
}

// Validate checks that the proposal only names known products with positive quantities.
// known maps product code to catalog product.
func (p *CartProposal) Validate(known map[string]Product) error {
	if len(p.Lines) == 0 {
		return errors.New("proposal has no lines")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range", p.Confidence)
	}
	for i, line := range p.Lines {
		if line.ProductCode == "" {
			return fmt.Errorf("line %d: missing product code", i+1)
		}
		if known != nil {
			if _, ok := known[line.ProductCode]; !ok {
				return fmt.Errorf("line %d: product code %s is not in the catalog", i+1, line.ProductCode)
			}
		}
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			return fmt.Errorf("line %d: invalid quantity %q: %w", i+1, line.Quantity, err)
		}
		if !qty.IsPositive() {
			return fmt.Errorf("line %d: quantity must be positive, got %s", i+1, qty)
		}
	}
	return nil
}

// ToLineItems resolves the proposal against the catalog into draft rows priced at
// each product's general price. Call Validate first.
func (p *CartProposal) ToLineItems(known map[string]Product) []LineItem {
	items := make([]LineItem, 0, len(p.Lines))
	for _, line := range p.Lines {
		prod, ok := known[line.ProductCode]
		if !ok {
			continue
		}
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			continue
		}
		id := prod.ID
		items = append(items, LineItem{
			ProductID:   &id,
			ProductName: prod.Name,
			ProductCode: prod.Code,
			Quantity:    qty,
			UnitPrice:   prod.GeneralPrice,
			Subtotal:    qty.Mul(prod.GeneralPrice),
		})
	}
	return items
}

// CatalogIndex keys active products by upper-cased code. Inactive products
// are never proposable.
func CatalogIndex(products []Product) map[string]Product {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		m[strings.ToUpper(p.Code)] = p
	}
	return m
}
