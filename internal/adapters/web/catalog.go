package web

import (
	"net/http"

	"pos-admin/internal/app"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

// ── Products ──────────────────────────────────────────────────────────────────

type productListResponse struct {
	Products []core.Product `json:"products"`
	LowStock int            `json:"low_stock"`
}

func productList(res *app.ProductListResult) productListResponse {
	products := res.Products
	if products == nil {
		products = []core.Product{}
	}
	return productListResponse{Products: products, LowStock: res.LowStock}
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListProducts(r.Context(), sessionFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, productList(res))
}

// searchProducts handles GET /api/products/search?q=.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SearchProducts(r.Context(), sessionFrom(r), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, productList(res))
}

// adjustStock handles POST /api/products/{id}/adjust-stock.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity decimal.Decimal `json:"quantity"`
		Reason   string          `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.AdjustStock(r.Context(), sessionFrom(r), app.AdjustStockRequest{
		ProductID: id,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListClients(r.Context(), sessionFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	clients := res.Clients
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, map[string]any{"clients": clients})
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.GetClient(r.Context(), sessionFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

// saveClient handles POST /api/clients and PUT /api/clients/{id}.
func (h *Handler) saveClient(w http.ResponseWriter, r *http.Request) {
	var c core.Client
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = 0
	if r.Method == http.MethodPut {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		c.ID = id
	}
	saved, err := h.svc.SaveClient(r.Context(), sessionFrom(r), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if r.Method == http.MethodPost {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
	}
	writeJSON(w, saved)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteClient(r.Context(), sessionFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Users (admin) ─────────────────────────────────────────────────────────────

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListUsers(r.Context(), sessionFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	users := res.Users
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, map[string]any{"users": users})
}

// saveUser handles POST /api/users and PUT /api/users/{id}.
func (h *Handler) saveUser(w http.ResponseWriter, r *http.Request) {
	var u core.User
	if !decodeJSON(w, r, &u) {
		return
	}
	u.ID = 0
	if r.Method == http.MethodPut {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		u.ID = id
	}
	saved, err := h.svc.SaveUser(r.Context(), sessionFrom(r), u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	saved.Password = ""
	writeJSON(w, saved)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), sessionFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetDashboard(r.Context(), sessionFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, m)
}
