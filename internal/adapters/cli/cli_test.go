package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"pos-admin/internal/app"
	"pos-admin/internal/backend"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func newCLIService(t *testing.T, h http.HandlerFunc) app.ApplicationService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.NewAppService(backend.New(srv.URL, time.Second, logger), nil, nil, app.Options{}, logger)
}

var cliSession = &core.Session{UserID: 4, Username: "ana", Role: core.RoleSeller, Token: "t"}

func TestRun_ValidatePrintsPayload(t *testing.T) {
	svc := newCLIService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("validate must not call the backend: %s", r.URL.Path)
	})
	in := strings.NewReader(`{
		"detalle": [{"producto_id": 1, "producto_codigo": "COL", "cantidad": 2, "precio_unitario": 10}],
		"metodo_pago": "transfer",
		"ultimos_digitos": "9876"
	}`)
	var out bytes.Buffer
	if err := run(context.Background(), svc, cliSession, []string{"validate"}, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got["metodo_pago"] != "transferencia" || got["ultimos_digitos"] != "9876" || got["usuario_id"] != float64(4) {
		t.Errorf("payload = %v", got)
	}
}

func TestRun_ValidateRejectsBadInput(t *testing.T) {
	svc := newCLIService(t, func(w http.ResponseWriter, r *http.Request) {})
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad json", `{`, "invalid JSON"},
		{"unknown method", `{"detalle":[{"producto_id":1,"cantidad":1,"precio_unitario":1}],"metodo_pago":"cheque"}`, "payment method"},
		{"no lines", `{"metodo_pago":"efectivo"}`, "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), svc, cliSession, []string{"validate"}, strings.NewReader(tt.body), io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRun_SellConvertsQuotation(t *testing.T) {
	var sale map[string]any
	svc := newCLIService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ventas" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&sale)
		_, _ = io.WriteString(w, `{"id":3,"numero":"V-0003"}`)
	})
	in := strings.NewReader(`{"cotizacion_id": 8, "detalle": [{"producto_id": 1, "cantidad": 1, "precio_unitario": 1200}], "metodo_pago": "efectivo"}`)
	var out bytes.Buffer
	if err := run(context.Background(), svc, cliSession, []string{"sell"}, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sale["cotizacion_id"] != float64(8) {
		t.Errorf("sale payload = %v", sale)
	}
	if !strings.Contains(out.String(), "V-0003") || !strings.Contains(out.String(), "S/ 1,200.00") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	svc := newCLIService(t, func(w http.ResponseWriter, r *http.Request) {})
	err := run(context.Background(), svc, cliSession, []string{"frobnicate"}, nil, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("got %v", err)
	}
}
