package repl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"pos-admin/internal/app"
	"pos-admin/internal/backend"

	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

// posBackend serves the handful of endpoints the REPL scenarios touch.
type posBackend struct {
	mu       sync.Mutex
	detail   []map[string]any
	saved    map[string]any
	sale     map[string]any
	failSave string
}

func (b *posBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/auth/login":
		_, _ = io.WriteString(w, `{"token":"t","usuario":{"id":2,"usuario":"ana","rol":"vendedor"}}`)
	case r.URL.Path == "/productos/buscar":
		_, _ = io.WriteString(w, `[{"id":9,"codigo":"ARN-M","nombre":"Arnés M","precio_general":32.5,"stock":4}]`)
	case r.URL.Path == "/cotizaciones/5" && r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"id":5,"numero":"C-0005","cliente_id":7,"estado":"pendiente"}`)
	case r.URL.Path == "/cotizaciones/5/detalle" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(b.detail)
	case r.URL.Path == "/cotizaciones/5/detalle" && r.Method == http.MethodPut:
		if b.failSave != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": b.failSave})
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&b.saved)
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/ventas":
		_ = json.NewDecoder(r.Body).Decode(&b.sale)
		_, _ = io.WriteString(w, `{"id":77,"numero":"V-0077"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"no route"}`)
	}
}

func runScript(t *testing.T, b *posBackend, lines ...string) string {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := backend.New(srv.URL, 2*time.Second, logger)
	svc := app.NewAppService(api, nil, nil, app.Options{}, logger)

	in := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	var out bytes.Buffer
	run(context.Background(), svc, in, &out)
	return out.String()
}

func TestREPL_EditQuotationAndSave(t *testing.T) {
	b := &posBackend{detail: []map[string]any{
		{"producto_id": 1, "producto_nombre": "Collar", "producto_codigo": "COL", "cantidad": 2, "precio_unitario": 15, "subtotal": 30},
	}}
	out := runScript(t, b,
		"ana", "secret",
		"/edit-quote 5",
		"add",
		"find 2 arnes",
		"pick 2 1",
		"qty 2 2",
		"save",
		"/exit",
	)

	if !strings.Contains(out, "Quotation saved.") {
		t.Fatalf("quotation not saved; output:\n%s", out)
	}
	if b.saved["total"] != float64(95) || b.saved["total_items"] != float64(4) {
		t.Errorf("saved aggregates = %v", b.saved)
	}
	lines, _ := b.saved["detalle"].([]any)
	if len(lines) != 2 {
		t.Fatalf("saved detalle = %v", b.saved["detalle"])
	}
	if l := lines[1].(map[string]any); l["producto_codigo"] != "ARN-M" || l["subtotal"] != float64(65) {
		t.Errorf("new line = %v", l)
	}
}

func TestREPL_SaveFailureStaysInEditor(t *testing.T) {
	b := &posBackend{
		detail:   []map[string]any{{"producto_id": 1, "producto_codigo": "COL", "cantidad": 1, "precio_unitario": 15}},
		failSave: "Stock insuficiente",
	}
	out := runScript(t, b,
		"ana", "secret",
		"/edit-quote 5",
		"save",
		"show",
		"cancel",
		"y",
		"/exit",
	)
	if !strings.Contains(out, "Error: Stock insuficiente\n") || strings.Contains(out, "update quotation 5 detail") {
		t.Errorf("backend message not shown verbatim:\n%s", out)
	}
	if !strings.Contains(out, "[quotation 5] edit> ") || !strings.Contains(out, "Editor closed.") {
		t.Errorf("editor did not stay open after failed save:\n%s", out)
	}
}

func TestREPL_PickKeepsRowQuantity(t *testing.T) {
	b := &posBackend{detail: []map[string]any{
		{"producto_id": 1, "producto_codigo": "COL", "cantidad": 1, "precio_unitario": 15},
	}}
	out := runScript(t, b,
		"ana", "secret",
		"/edit-quote 5",
		"add",
		"find 2 arnes",
		"pick 2 1",
		"cancel",
		"y",
		"/exit",
	)
	row := regexp.MustCompile(`ARN-M\s+Arnés M\s+0\s+32\.50\s+0\.00`)
	if !row.MatchString(out) {
		t.Errorf("picked row should keep quantity 0 with the product price:\n%s", out)
	}
}

func TestREPL_ConvertQuotationToSale(t *testing.T) {
	b := &posBackend{detail: []map[string]any{
		{"producto_id": 1, "producto_codigo": "COL", "cantidad": 2, "precio_unitario": 10},
	}}
	out := runScript(t, b,
		"ana", "secret",
		"/edit-quote 5",
		"checkout",
		"tarjeta", // method
		"",        // full payment
		"",        // pickup
		"",        // notes
		"y",
		"/exit",
	)
	if !strings.Contains(out, "SALE REGISTERED") {
		t.Fatalf("sale not registered:\n%s", out)
	}
	if b.sale["cotizacion_id"] != float64(5) || b.sale["metodo_pago"] != "tarjeta" {
		t.Errorf("sale payload = %v", b.sale)
	}
	if b.sale["comision"] != float64(1) || b.sale["total_con_comision"] != float64(21) {
		t.Errorf("surcharge = %v / %v", b.sale["comision"], b.sale["total_con_comision"])
	}
}

func TestREPL_InvalidQuantityRejected(t *testing.T) {
	b := &posBackend{}
	out := runScript(t, b,
		"ana", "secret",
		"/cart",
		"add",
		"qty 1 dos",
		"cancel",
		"y",
		"/exit",
	)
	if !strings.Contains(out, "Error: ") || !strings.Contains(out, "quantity") {
		t.Errorf("invalid quantity not reported:\n%s", out)
	}
}

func TestREPL_HeldCartsDisabled(t *testing.T) {
	out := runScript(t, &posBackend{}, "ana", "secret", "/held", "/exit")
	if !strings.Contains(out, app.ErrHeldCartsDisabled.Error()) {
		t.Errorf("expected disabled message:\n%s", out)
	}
}
