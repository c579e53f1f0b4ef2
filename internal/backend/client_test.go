package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"pos-admin/internal/backend"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

var sess = &core.Session{UserID: 3, Username: "ana", Role: core.RoleSeller, Token: "tok-123"}

func newTestClient(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL+"/", 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["usuario"] != "ana" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Credenciales inválidas"}`)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":   "tok-123",
			"usuario": map[string]any{"id": 3, "usuario": "ana", "rol": "admin"},
		})
	})

	s, err := c.Login(context.Background(), " ana ", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token != "tok-123" || s.UserID != 3 || !s.IsAdmin() {
		t.Errorf("session = %+v", s)
	}

	_, err = c.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, backend.ErrUnauthorized) {
		t.Errorf("bad password: got %v, want ErrUnauthorized", err)
	}
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Credenciales inválidas" {
		t.Errorf("backend message not surfaced verbatim: %v", err)
	}
}

func TestSearchProducts_SendsTokenAndEscapesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/productos/buscar" || r.URL.Query().Get("q") != "collar & correa" {
			t.Errorf("unexpected URL %s", r.URL)
		}
		_, _ = io.WriteString(w, `[{"id":7,"codigo":"P7","nombre":"Collar","precio_general":12.5,"stock":3}]`)
	})

	got, err := c.SearchProducts(context.Background(), sess, "collar & correa")
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(got) != 1 || got[0].Code != "P7" || !got[0].GeneralPrice.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("products = %+v", got)
	}
}

func TestDo_UnwrapsDataEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"nombre":"Ana"}]}`)
	})
	got, err := c.ListClients(context.Background(), sess)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ana" {
		t.Errorf("clients = %+v", got)
	}
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantIs   error
		wantText string
	}{
		{"not found", http.StatusNotFound, `{"error":"Cotización no encontrada"}`, backend.ErrNotFound, "Cotización no encontrada"},
		{"expired token", http.StatusUnauthorized, `{"message":"Token expirado"}`, backend.ErrUnauthorized, "Token expirado"},
		{"plain text", http.StatusInternalServerError, "boom", nil, "boom"},
		{"empty body", http.StatusBadGateway, "", nil, "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetQuotation(context.Background(), sess, 9)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not contain %q", err, tt.wantText)
			}
		})
	}
}

func TestDo_RejectsMissingSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent without a token")
	})
	_, err := c.ListProducts(context.Background(), &core.Session{})
	if !errors.Is(err, core.ErrNoSession) {
		t.Errorf("got %v, want ErrNoSession", err)
	}
}

func TestCreateSale_SendsNumbers(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ventas" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 55, "numero": "V-0055", "total": 25})
	})

	id := 1
	payload, err := core.AssembleSale(core.SaleInput{
		Items: []core.LineItem{{
			ProductID: &id, ProductCode: "P1", ProductName: "Collar",
			Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("12.5"),
		}},
		QuotationID: &id,
		Payment:     core.PaymentInfo{Method: core.PaymentCard},
		Session:     sess,
	})
	if err != nil {
		t.Fatalf("AssembleSale: %v", err)
	}
	sale, err := c.CreateSale(context.Background(), sess, payload)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if sale.ID != 55 || sale.Number != "V-0055" {
		t.Errorf("sale = %+v", sale)
	}
	if _, ok := body["total"].(float64); !ok {
		t.Errorf("total sent as %T, want JSON number", body["total"])
	}
	if body["cotizacion_id"] != float64(1) || body["metodo_pago"] != "tarjeta" {
		t.Errorf("body = %v", body)
	}
	detail, _ := body["detalle"].([]any)
	if len(detail) != 1 {
		t.Fatalf("detalle = %v", body["detalle"])
	}
	line := detail[0].(map[string]any)
	if line["producto_codigo"] != "P1" || line["subtotal"] != float64(25) {
		t.Errorf("line = %v", line)
	}
}

func TestQuotationDetailRoundTrip(t *testing.T) {
	var saved map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"producto_id":4,"producto_nombre":"Arnés","producto_codigo":"A4","cantidad":"3","precio_unitario":"5","subtotal":"15"}]`)
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&saved)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	lines, err := c.GetQuotationDetail(ctx, sess, 12)
	if err != nil {
		t.Fatalf("GetQuotationDetail: %v", err)
	}
	items := core.LineItemsFromPayload(lines)
	if len(items) != 1 || !items[0].Subtotal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("items = %+v", items)
	}

	p, err := core.AssembleQuotationDetail(items)
	if err != nil {
		t.Fatalf("AssembleQuotationDetail: %v", err)
	}
	if err := c.UpdateQuotationDetail(ctx, sess, 12, *p); err != nil {
		t.Fatalf("UpdateQuotationDetail: %v", err)
	}
	if saved["total"] != float64(15) || saved["total_items"] != float64(3) {
		t.Errorf("saved aggregates = %v", saved)
	}
}

func TestAdjustStock_PostsSignedQuantity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/productos/7/ajuste-stock" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["cantidad"] != float64(-2) || body["motivo"] != "merma" {
			t.Errorf("body = %v", body)
		}
		_, _ = io.WriteString(w, `{"id":7,"codigo":"P7","stock":8}`)
	})

	p, err := c.AdjustStock(context.Background(), sess, core.StockAdjustment{ProductID: 7, Quantity: decimal.NewFromInt(-2), Reason: "merma"})
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if !p.Stock.Equal(decimal.NewFromInt(8)) {
		t.Errorf("stock = %s", p.Stock)
	}
}
