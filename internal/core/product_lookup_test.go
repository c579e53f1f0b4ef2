package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pos-admin/internal/core"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, q string) ([]core.Product, error)
}

func (f *fakeSearcher) SearchProducts(ctx context.Context, q string) ([]core.Product, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, q)
	}
	return []core.Product{{ID: len(q), Code: q, Name: "match " + q, GeneralPrice: dec("1")}}, nil
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProductLookup_EmptyQueryNoNetwork(t *testing.T) {
	fs := &fakeSearcher{}
	l := core.NewProductLookup(fs, time.Millisecond, quietLogger())

	if _, err := l.Search(context.Background(), "co", 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(l.Suggestions(0)) != 1 {
		t.Fatalf("expected a stored suggestion before clearing")
	}

	for _, q := range []string{"", "   "} {
		got, err := l.Search(context.Background(), q, 0)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Search(%q) = %v, want empty non-nil slice", q, got)
		}
	}
	if n := len(fs.Calls()); n != 1 {
		t.Errorf("searcher called %d times, want 1", n)
	}
	if len(l.Suggestions(0)) != 0 {
		t.Errorf("suggestions not cleared by empty query")
	}
}

func TestProductLookup_DebounceKeepsLastCall(t *testing.T) {
	fs := &fakeSearcher{}
	l := core.NewProductLookup(fs, 100*time.Millisecond, quietLogger())

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, q := range []string{"c", "co", "col"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			_, errs[i] = l.Search(context.Background(), q, 0)
		}(i, q)
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	if !errors.Is(errs[0], core.ErrSuperseded) || !errors.Is(errs[1], core.ErrSuperseded) {
		t.Errorf("earlier calls: got %v, %v; want ErrSuperseded", errs[0], errs[1])
	}
	if errs[2] != nil {
		t.Errorf("last call: %v", errs[2])
	}
	calls := fs.Calls()
	if len(calls) != 1 || calls[0] != "col" {
		t.Errorf("network calls = %v, want [col]", calls)
	}
	if s := l.Suggestions(0); len(s) != 1 || s[0].Code != "col" {
		t.Errorf("suggestions = %+v", s)
	}
}

func TestProductLookup_RowsAreIndependent(t *testing.T) {
	fs := &fakeSearcher{}
	l := core.NewProductLookup(fs, 10*time.Millisecond, quietLogger())

	var wg sync.WaitGroup
	for row, q := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(row int, q string) {
			defer wg.Done()
			if _, err := l.Search(context.Background(), q, row); err != nil {
				t.Errorf("row %d: %v", row, err)
			}
		}(row, q)
	}
	wg.Wait()

	if s := l.Suggestions(0); len(s) != 1 || s[0].Code != "alpha" {
		t.Errorf("row 0 suggestions = %+v", s)
	}
	if s := l.Suggestions(1); len(s) != 1 || s[0].Code != "beta" {
		t.Errorf("row 1 suggestions = %+v", s)
	}
}

func TestProductLookup_LastIssuedWins(t *testing.T) {
	release := make(chan struct{})
	fs := &fakeSearcher{}
	fs.fn = func(ctx context.Context, q string) ([]core.Product, error) {
		if q == "old" {
			// Ignores cancellation and resolves after the newer request.
			<-release
		}
		return []core.Product{{ID: 1, Code: q}}, nil
	}
	l := core.NewProductLookup(fs, 0, quietLogger())

	oldDone := make(chan error, 1)
	go func() {
		_, err := l.Search(context.Background(), "old", 0)
		oldDone <- err
	}()

	deadline := time.Now().Add(time.Second)
	for len(fs.Calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if _, err := l.Search(context.Background(), "new", 0); err != nil {
		t.Fatalf("newer search: %v", err)
	}
	close(release)

	if err := <-oldDone; !errors.Is(err, core.ErrSuperseded) {
		t.Errorf("older search: got %v, want ErrSuperseded", err)
	}
	if s := l.Suggestions(0); len(s) != 1 || s[0].Code != "new" {
		t.Errorf("suggestions = %+v, want the newer result", s)
	}
}

func TestProductLookup_CancelsInFlightRequest(t *testing.T) {
	cancelled := make(chan struct{})
	fs := &fakeSearcher{}
	fs.fn = func(ctx context.Context, q string) ([]core.Product, error) {
		if q == "slow" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return []core.Product{{ID: 2, Code: q}}, nil
	}
	l := core.NewProductLookup(fs, 0, quietLogger())

	done := make(chan error, 1)
	go func() {
		_, err := l.Search(context.Background(), "slow", 3)
		done <- err
	}()
	for len(fs.Calls()) == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := l.Search(context.Background(), "fast", 3); err != nil {
		t.Fatalf("fast search: %v", err)
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
	if err := <-done; !errors.Is(err, core.ErrSuperseded) {
		t.Errorf("slow search: got %v, want ErrSuperseded", err)
	}
}

func TestProductLookup_FailureDegradesToEmpty(t *testing.T) {
	fs := &fakeSearcher{fn: func(ctx context.Context, q string) ([]core.Product, error) {
		return nil, errors.New("backend down")
	}}
	l := core.NewProductLookup(fs, 0, quietLogger())

	got, err := l.Search(context.Background(), "x", 0)
	if err != nil {
		t.Fatalf("expected nil error on backend failure, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestProductLookup_RemoveRowShiftsSuggestions(t *testing.T) {
	l := core.NewProductLookup(&fakeSearcher{}, 0, quietLogger())
	ctx := context.Background()
	for row, q := range []string{"a", "b", "c"} {
		if _, err := l.Search(ctx, q, row); err != nil {
			t.Fatalf("Search row %d: %v", row, err)
		}
	}

	l.RemoveRow(0)

	if s := l.Suggestions(0); len(s) != 1 || s[0].Code != "b" {
		t.Errorf("row 0 after shift = %+v, want b", s)
	}
	if s := l.Suggestions(1); len(s) != 1 || s[0].Code != "c" {
		t.Errorf("row 1 after shift = %+v, want c", s)
	}
	if s := l.Suggestions(2); len(s) != 0 {
		t.Errorf("row 2 after shift = %+v, want empty", s)
	}
}
