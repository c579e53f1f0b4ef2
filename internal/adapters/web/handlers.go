package web

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pos-admin/internal/app"
	"pos-admin/internal/core"
	webui "pos-admin/web"

	"github.com/go-chi/chi/v5"
)

const (
	draftTTL      = 30 * time.Minute
	purgeInterval = 5 * time.Minute
)

// Handler holds the ApplicationService, the chi router, and the in-memory
// session and draft stores.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	sessions   *ttlStore[*core.Session]
	drafts     *ttlStore[*draftEntry]
	jwtSecret  string
	fileServer http.Handler
	logger     *slog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *slog.Logger) http.Handler {
	return newHandler(svc, allowedOrigins, jwtSecret, logger)
}

func newHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *slog.Logger) *Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		sessions:   newTTLStore[*core.Session](sessionTTL, nil),
		drafts:     newTTLStore(draftTTL, (*draftEntry).close),
		jwtSecret:  jwtSecret,
		fileServer: http.FileServer(http.FS(staticFS)),
		logger:     logger,
	}

	h.sessions.startPurge(context.Background(), purgeInterval)
	h.drafts.startPurge(context.Background(), purgeInterval)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)
	r.Get("/", h.index)
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Inventory
		r.Get("/api/products", h.listProducts)
		r.Get("/api/products/search", h.searchProducts)
		r.Post("/api/products/{id}/adjust-stock", h.adjustStock)

		// Clients
		r.Get("/api/clients", h.listClients)
		r.Post("/api/clients", h.saveClient)
		r.Get("/api/clients/{id}", h.getClient)
		r.Put("/api/clients/{id}", h.saveClient)
		r.Delete("/api/clients/{id}", h.deleteClient)

		// Quotations
		r.Get("/api/quotations", h.listQuotations)
		r.Get("/api/quotations/{id}", h.getQuotation)
		r.Delete("/api/quotations/{id}", h.deleteQuotation)
		r.Post("/api/quotations/{id}/edit", h.openQuotationDraft)

		// Draft editors
		r.Post("/api/drafts", h.newCartDraft)
		r.Get("/api/drafts/{draft}", h.getDraft)
		r.Delete("/api/drafts/{draft}", h.discardDraft)
		r.Post("/api/drafts/{draft}/rows", h.addRows)
		r.Patch("/api/drafts/{draft}/rows/{row}", h.updateRow)
		r.Delete("/api/drafts/{draft}/rows/{row}", h.removeRow)
		r.Get("/api/drafts/{draft}/rows/{row}/search", h.searchRow)
		r.Post("/api/drafts/{draft}/rows/{row}/select", h.selectSuggestion)
		r.Put("/api/drafts/{draft}/customer", h.setDraftCustomer)
		r.Post("/api/drafts/{draft}/save", h.saveDraft)
		r.Post("/api/drafts/{draft}/quote", h.quoteDraft)
		r.Post("/api/drafts/{draft}/checkout", h.checkoutDraft)
		r.Post("/api/drafts/{draft}/hold", h.holdDraft)
		r.Post("/api/drafts/{draft}/assist", h.assistDraft)
		r.Post("/api/drafts/{draft}/assist/accept", h.acceptAssist)

		// Held carts
		r.Get("/api/held-carts", h.listHeldCarts)
		r.Post("/api/held-carts/{id}/resume", h.resumeHeldCart)
		r.Delete("/api/held-carts/{id}", h.discardHeldCart)

		// Users (admin)
		r.Get("/api/users", h.listUsers)
		r.Post("/api/users", h.saveUser)
		r.Put("/api/users/{id}", h.saveUser)
		r.Delete("/api/users/{id}", h.deleteUser)

		r.Get("/api/dashboard", h.dashboard)
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// health reports liveness. It does not reach the backend.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam parses a positive integer URL parameter, writing 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
