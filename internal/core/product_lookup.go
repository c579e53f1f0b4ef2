package core

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultSearchDebounce is the quiet window a row's query must survive before
// it reaches the backend.
const DefaultSearchDebounce = 300 * time.Millisecond

// minQueryLen is the shortest query (in runes, after trimming) that is sent to the backend.
const minQueryLen = 1

// ErrSuperseded is returned to a search that was replaced by a newer one for the same row.
var ErrSuperseded = errors.New("search superseded by a newer query")

// ProductSearcher is the backend collaborator queried by ProductLookup.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string) ([]Product, error)
}

// ProductSearchFunc adapts a function to ProductSearcher.
type ProductSearchFunc func(ctx context.Context, query string) ([]Product, error)

func (f ProductSearchFunc) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	return f(ctx, query)
}

// rowSearch tracks the latest search issued for one row. row is updated when
// earlier rows are removed so in-flight results land on the shifted index.
type rowSearch struct {
	row    int
	gen    uint64
	cancel context.CancelFunc
}

// ProductLookup runs debounced product searches keyed by draft row.
//
// Every call bumps a generation counter and cancels the previous call for the
// same row, both while it waits out the debounce window and while its request
// is in flight. Only the most recently issued search may store suggestions.
type ProductLookup struct {
	searcher ProductSearcher
	window   time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	seq         uint64
	rows        map[int]*rowSearch
	suggestions map[int][]Product
}

// NewProductLookup creates a lookup. A non-positive window disables debouncing.
func NewProductLookup(searcher ProductSearcher, window time.Duration, logger *slog.Logger) *ProductLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductLookup{
		searcher:    searcher,
		window:      window,
		logger:      logger,
		rows:        make(map[int]*rowSearch),
		suggestions: make(map[int][]Product),
	}
}

// Search returns candidate products for query on row. It blocks the caller for
// the debounce window plus the backend round trip, but never other rows.
//
// A query shorter than one character clears the row without a network call.
// A backend failure yields an empty list and a nil error. A call replaced by a
// newer one for the same row returns ErrSuperseded.
func (l *ProductLookup) Search(ctx context.Context, query string, row int) ([]Product, error) {
	query = strings.TrimSpace(query)

	l.mu.Lock()
	st, ok := l.rows[row]
	if !ok {
		st = &rowSearch{row: row}
		l.rows[row] = st
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	l.seq++
	gen := l.seq
	st.gen = gen

	if utf8.RuneCountInString(query) < minQueryLen {
		delete(l.suggestions, row)
		l.mu.Unlock()
		return []Product{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	if l.window > 0 {
		timer := time.NewTimer(l.window)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, l.abandoned(st, gen, ctx.Err())
		case <-timer.C:
		}
	}

	products, err := l.searcher.SearchProducts(ctx, query)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.current(st, gen) {
		return nil, ErrSuperseded
	}
	st.cancel = nil
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Warn("product search failed", "row", st.row, "query", query, "error", err)
		products = []Product{}
	}
	if products == nil {
		products = []Product{}
	}
	l.suggestions[st.row] = products
	return products, nil
}

// Suggestions returns the stored candidates for row.
func (l *ProductLookup) Suggestions(row int) []Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.suggestions[row]
	out := make([]Product, len(s))
	copy(out, s)
	return out
}

// Clear drops the suggestions for row and abandons any pending search on it.
func (l *ProductLookup) Clear(row int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropRow(row)
}

// RemoveRow mirrors Draft.RemoveRow: row is dropped and every later row's
// search state and suggestions shift down by one.
func (l *ProductLookup) RemoveRow(row int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropRow(row)

	keys := make([]int, 0, len(l.rows))
	for k := range l.rows {
		if k > row {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	for _, k := range keys {
		st := l.rows[k]
		delete(l.rows, k)
		st.row = k - 1
		l.rows[k-1] = st
	}

	skeys := make([]int, 0, len(l.suggestions))
	for k := range l.suggestions {
		if k > row {
			skeys = append(skeys, k)
		}
	}
	sort.Ints(skeys)
	for _, k := range skeys {
		l.suggestions[k-1] = l.suggestions[k]
		delete(l.suggestions, k)
	}
}

// Reset abandons every pending search and forgets all suggestions.
func (l *ProductLookup) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, st := range l.rows {
		if st.cancel != nil {
			st.cancel()
		}
	}
	l.rows = make(map[int]*rowSearch)
	l.suggestions = make(map[int][]Product)
}

func (l *ProductLookup) dropRow(row int) {
	if st, ok := l.rows[row]; ok {
		if st.cancel != nil {
			st.cancel()
		}
		delete(l.rows, row)
	}
	delete(l.suggestions, row)
}

// current reports whether gen is still the latest search for st's row. Must hold l.mu.
func (l *ProductLookup) current(st *rowSearch, gen uint64) bool {
	return st.gen == gen && l.rows[st.row] == st
}

func (l *ProductLookup) abandoned(st *rowSearch, gen uint64, ctxErr error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.current(st, gen) {
		return ErrSuperseded
	}
	st.cancel = nil
	return ctxErr
}
