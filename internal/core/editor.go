package core

import (
	"context"
	"fmt"
)

// EditorKind distinguishes a quotation detail edit from a fresh checkout cart.
type EditorKind string

const (
	EditorQuotation EditorKind = "quotation"
	EditorCart      EditorKind = "cart"
)

// Editor binds a Draft to its ProductLookup so that row removal and product
// selection keep both in step.
type Editor struct {
	Kind        EditorKind
	QuotationID int  // set for EditorQuotation
	CustomerID  *int // optional customer carried to save/checkout

	draft  *Draft
	lookup *ProductLookup
}

// NewEditor wraps draft and lookup into one editing session.
func NewEditor(kind EditorKind, draft *Draft, lookup *ProductLookup) *Editor {
	return &Editor{Kind: kind, draft: draft, lookup: lookup}
}

// Draft returns the underlying draft.
func (e *Editor) Draft() *Draft { return e.draft }

// AddRow appends a zeroed row.
func (e *Editor) AddRow() int { return e.draft.AddRow() }

// Append adds items after the existing rows and returns the index of the first one.
func (e *Editor) Append(items ...LineItem) int {
	first := e.draft.Len()
	e.draft.Replace(append(e.draft.Items(), items...))
	return first
}

// RemoveRow removes row from the draft and shifts the suggestion lists with it.
func (e *Editor) RemoveRow(row int) error {
	if err := e.draft.RemoveRow(row); err != nil {
		return err
	}
	e.lookup.RemoveRow(row)
	return nil
}

// Search runs a debounced product search for an existing row.
func (e *Editor) Search(ctx context.Context, query string, row int) ([]Product, error) {
	if _, err := e.draft.Row(row); err != nil {
		return nil, err
	}
	return e.lookup.Search(ctx, query, row)
}

// Suggestions returns the current candidates for row.
func (e *Editor) Suggestions(row int) []Product {
	return e.lookup.Suggestions(row)
}

// Select applies p to row and clears the row's suggestions.
func (e *Editor) Select(row int, p Product) error {
	if err := e.draft.SetProduct(row, p); err != nil {
		return err
	}
	e.lookup.Clear(row)
	return nil
}

// SelectSuggestion applies the idx-th stored suggestion of row.
func (e *Editor) SelectSuggestion(row, idx int) error {
	s := e.lookup.Suggestions(row)
	if idx < 0 || idx >= len(s) {
		return fmt.Errorf("row %d has no suggestion %d (%d available)", row+1, idx+1, len(s))
	}
	return e.Select(row, s[idx])
}

// Close abandons pending searches. The draft is discarded with the editor.
func (e *Editor) Close() {
	e.lookup.Reset()
}
