package web

import (
	"net/http"

	"pos-admin/internal/app"
	"pos-admin/internal/core"
)

type quotationResponse struct {
	Quotation *core.Quotation `json:"quotation"`
	Items     []core.LineItem `json:"items"`
	Totals    core.Totals     `json:"totals"`
}

func quotationView(res *app.QuotationResult) quotationResponse {
	items := res.Items
	if items == nil {
		items = []core.LineItem{}
	}
	return quotationResponse{Quotation: res.Quotation, Items: items, Totals: res.Totals}
}

// listQuotations handles GET /api/quotations.
func (h *Handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListQuotations(r.Context(), sessionFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	quotations := res.Quotations
	if quotations == nil {
		quotations = []core.Quotation{}
	}
	writeJSON(w, map[string]any{"quotations": quotations})
}

// getQuotation handles GET /api/quotations/{id} and returns the header with its detail.
func (h *Handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetQuotation(r.Context(), sessionFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, quotationView(res))
}

func (h *Handler) deleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteQuotation(r.Context(), sessionFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// openQuotationDraft handles POST /api/quotations/{id}/edit. It loads the
// detail into a new draft editor and returns the draft.
func (h *Handler) openQuotationDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	ed, err := h.svc.OpenQuotationEditor(r.Context(), sessionFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeNewDraft(w, r, ed)
}

// ── Held carts ────────────────────────────────────────────────────────────────

func (h *Handler) listHeldCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.svc.ListHeldCarts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if carts == nil {
		carts = []core.HeldCart{}
	}
	writeJSON(w, map[string]any{"held_carts": carts})
}

// resumeHeldCart handles POST /api/held-carts/{id}/resume. The held cart is
// removed and its rows come back as a new draft.
func (h *Handler) resumeHeldCart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	ed, err := h.svc.ResumeHeldCart(r.Context(), sessionFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeNewDraft(w, r, ed)
}

func (h *Handler) discardHeldCart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DiscardHeldCart(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
