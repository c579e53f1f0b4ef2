package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"pos-admin/internal/app"
	"pos-admin/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Draft store entries ──────────────────────────────────────────────────────

// draftEntry is one open editor owned by one signed-in session.
// Row edits go straight to the editor, whose draft and lookup are
// independently locked. mu guards the editor's customer, the pending
// assistant suggestion, and the submit operations.
type draftEntry struct {
	id     string
	owner  string
	editor *core.Editor

	mu      sync.Mutex
	pending *app.CartSuggestionResult
}

func (d *draftEntry) close() { d.editor.Close() }

type draftResponse struct {
	ID          string          `json:"id"`
	Kind        core.EditorKind `json:"kind"`
	QuotationID int             `json:"quotation_id,omitempty"`
	CustomerID  *int            `json:"customer_id,omitempty"`
	Items       []core.LineItem `json:"items"`
	Totals      core.Totals     `json:"totals"`
	Surcharge   decimal.Decimal `json:"surcharge"`
}

func (d *draftEntry) view(surcharge decimal.Decimal) draftResponse {
	d.mu.Lock()
	customer := d.editor.CustomerID
	d.mu.Unlock()

	items := d.editor.Draft().Items()
	if items == nil {
		items = []core.LineItem{}
	}
	return draftResponse{
		ID:          d.id,
		Kind:        d.editor.Kind,
		QuotationID: d.editor.QuotationID,
		CustomerID:  customer,
		Items:       items,
		Totals:      d.editor.Draft().TotalsWithSurcharge(surcharge),
		Surcharge:   surcharge,
	}
}

// writeNewDraft registers ed under a fresh id for the calling session.
func (h *Handler) writeNewDraft(w http.ResponseWriter, r *http.Request, ed *core.Editor) {
	d := &draftEntry{
		id:     uuid.NewString(),
		owner:  authFromContext(r.Context()).SessionID,
		editor: ed,
	}
	h.drafts.put(d.id, d)
	h.logger.Debug("draft opened", "draft", d.id, "kind", ed.Kind, "quotation", ed.QuotationID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d.view(decimal.Zero))
}

// draft resolves {draft} for the calling session, writing 404 when it is
// unknown, expired, or owned by someone else.
func (h *Handler) draft(w http.ResponseWriter, r *http.Request) (*draftEntry, bool) {
	d, ok := h.drafts.get(chi.URLParam(r, "draft"))
	if !ok || d.owner != authFromContext(r.Context()).SessionID {
		writeError(w, r, "draft not found or expired", "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return d, true
}

// finish drops a draft after a successful submit.
func (h *Handler) finish(d *draftEntry) {
	if _, ok := h.drafts.delete(d.id); ok {
		d.close()
	}
}

// rowParam parses the zero-based {row} parameter.
func rowParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		writeError(w, r, "invalid row", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return row, true
}

// numericText accepts a JSON string or number and keeps its text so the
// draft's numeric policy decides how to read it.
type numericText string

func (n *numericText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = numericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected a number or a string, got %s", b)
	}
	*n = numericText(num.String())
	return nil
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// newCartDraft handles POST /api/drafts and opens an empty checkout cart.
func (h *Handler) newCartDraft(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !sess.Valid() {
		writeServiceError(w, r, core.ErrNoSession)
		return
	}
	h.writeNewDraft(w, r, h.svc.NewCartEditor(sess))
}

// getDraft handles GET /api/drafts/{draft}. With ?payment_method= (and an
// optional amount_paid) the totals include that method's surcharge.
func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	surcharge := decimal.Zero
	if raw := r.URL.Query().Get("payment_method"); raw != "" {
		method, err := core.ParsePaymentMethod(raw)
		if err != nil {
			writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		paid := d.editor.Draft().Totals().TotalAmount
		if rawPaid := r.URL.Query().Get("amount_paid"); rawPaid != "" {
			v, err := core.ParseNumber(rawPaid)
			if err != nil {
				writeError(w, r, "invalid amount_paid", "BAD_REQUEST", http.StatusBadRequest)
				return
			}
			if !v.IsZero() {
				paid = v
			}
		}
		surcharge = core.Surcharge(method, paid)
	}
	writeJSON(w, d.view(surcharge))
}

// discardDraft handles DELETE /api/drafts/{draft}.
func (h *Handler) discardDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	h.finish(d)
	w.WriteHeader(http.StatusNoContent)
}

// ── Rows ──────────────────────────────────────────────────────────────────────

// addRows handles POST /api/drafts/{draft}/rows. An empty body appends one
// blank row; {"items": [...]} appends the given lines.
func (h *Handler) addRows(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req struct {
		Items []core.LineItem `json:"items"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		d.editor.AddRow()
	} else {
		d.editor.Append(req.Items...)
	}
	writeJSON(w, d.view(decimal.Zero))
}

// updateRow handles PATCH /api/drafts/{draft}/rows/{row} with quantity
// and/or unit_price. Both fields go through the draft's numeric policy.
func (h *Handler) updateRow(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	row, ok := rowParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity  *numericText `json:"quantity"`
		UnitPrice *numericText `json:"unit_price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	draft := d.editor.Draft()
	if req.Quantity != nil {
		if err := draft.SetQuantityText(row, string(*req.Quantity)); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if req.UnitPrice != nil {
		if err := draft.SetUnitPriceText(row, string(*req.UnitPrice)); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	writeJSON(w, d.view(decimal.Zero))
}

// removeRow handles DELETE /api/drafts/{draft}/rows/{row}.
func (h *Handler) removeRow(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	row, ok := rowParam(w, r)
	if !ok {
		return
	}
	if err := d.editor.RemoveRow(row); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, d.view(decimal.Zero))
}

type suggestionsResponse struct {
	Row         int            `json:"row"`
	Suggestions []core.Product `json:"suggestions"`
}

// searchRow handles GET /api/drafts/{draft}/rows/{row}/search?q=. A search
// replaced by a newer one on the same row answers 409.
func (h *Handler) searchRow(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	row, ok := rowParam(w, r)
	if !ok {
		return
	}
	products, err := d.editor.Search(r.Context(), r.URL.Query().Get("q"), row)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []core.Product{}
	}
	writeJSON(w, suggestionsResponse{Row: row, Suggestions: products})
}

// selectSuggestion handles POST /api/drafts/{draft}/rows/{row}/select with
// the zero-based index of a stored suggestion.
func (h *Handler) selectSuggestion(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	row, ok := rowParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	suggestions := d.editor.Suggestions(row)
	if req.Index < 0 || req.Index >= len(suggestions) {
		writeError(w, r, fmt.Sprintf("row %d has %d suggestions", row, len(suggestions)), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := d.editor.Select(row, suggestions[req.Index]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, d.view(decimal.Zero))
}

// setDraftCustomer handles PUT /api/drafts/{draft}/customer. A null
// customer_id clears it.
func (h *Handler) setDraftCustomer(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req struct {
		CustomerID *int `json:"customer_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	d.mu.Lock()
	d.editor.CustomerID = req.CustomerID
	d.mu.Unlock()
	writeJSON(w, d.view(decimal.Zero))
}

// ── Submit ────────────────────────────────────────────────────────────────────

// saveDraft handles POST /api/drafts/{draft}/save for quotation drafts. On
// failure the draft stays open with its rows so the operator can retry.
func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	res, err := h.svc.SaveQuotationEditor(r.Context(), sessionFrom(r), d.editor)
	d.mu.Unlock()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.finish(d)
	writeJSON(w, quotationView(res))
}

// quoteDraft handles POST /api/drafts/{draft}/quote and stores the rows as a
// new quotation.
func (h *Handler) quoteDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	res, err := h.svc.SaveAsQuotation(r.Context(), sessionFrom(r), d.editor)
	d.mu.Unlock()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.finish(d)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(quotationView(res))
}

type checkoutRequest struct {
	CustomerID    *int            `json:"customer_id"`
	Method        string          `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	OperationCode string          `json:"operation_code"`
	LastDigits    string          `json:"last_digits"`
	Delivery      string          `json:"delivery"`
	Address       string          `json:"address"`
	Reference     string          `json:"reference"`
	Recipient     string          `json:"recipient"`
	Phone         string          `json:"phone"`
	Agency        string          `json:"agency"`
	Notes         string          `json:"notes"`
}

func parseDelivery(s string) (core.DeliveryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recojo", "pickup":
		return core.DeliveryPickup, nil
	case "envio", "shipping":
		return core.DeliveryShipping, nil
	default:
		return "", fmt.Errorf("unknown delivery mode %q", s)
	}
}

func (c checkoutRequest) toApp() (app.CheckoutRequest, error) {
	var problems []string
	method, err := core.ParsePaymentMethod(c.Method)
	if err != nil {
		problems = append(problems, err.Error())
	}
	mode, err := parseDelivery(c.Delivery)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return app.CheckoutRequest{}, &core.ValidationError{Problems: problems}
	}
	return app.CheckoutRequest{
		CustomerID: c.CustomerID,
		Payment: core.PaymentInfo{
			Method:        method,
			AmountPaid:    c.AmountPaid,
			OperationCode: c.OperationCode,
			LastDigits:    c.LastDigits,
		},
		Shipping: core.ShippingInfo{
			Mode:      mode,
			Address:   c.Address,
			Reference: c.Reference,
			Recipient: c.Recipient,
			Phone:     c.Phone,
			Agency:    c.Agency,
		},
		Notes: c.Notes,
	}, nil
}

type checkoutResponse struct {
	Sale    *core.Sale        `json:"sale"`
	Payload *core.SalePayload `json:"payload"`
}

// checkoutDraft handles POST /api/drafts/{draft}/checkout. For a quotation
// draft the sale converts that quotation.
func (h *Handler) checkoutDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var body checkoutRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := body.toApp()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d.mu.Lock()
	res, err := h.svc.Checkout(r.Context(), sessionFrom(r), d.editor, req)
	d.mu.Unlock()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.finish(d)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(checkoutResponse{Sale: res.Sale, Payload: res.Payload})
}

// holdDraft handles POST /api/drafts/{draft}/hold and parks the cart.
func (h *Handler) holdDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req struct {
		Label string `json:"label"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	d.mu.Lock()
	cart, err := h.svc.HoldCart(r.Context(), sessionFrom(r), d.editor, req.Label)
	d.mu.Unlock()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.finish(d)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(cart)
}

// ── Assistant ─────────────────────────────────────────────────────────────────

type assistResponse struct {
	Clarification string             `json:"clarification,omitempty"`
	Proposal      *core.CartProposal `json:"proposal,omitempty"`
	Items         []core.LineItem    `json:"items,omitempty"`
	Totals        *core.Totals       `json:"totals,omitempty"`
}

// assistDraft handles POST /api/drafts/{draft}/assist. The suggestion is kept
// on the draft until accepted; nothing is added to the rows here.
func (h *Handler) assistDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.SuggestCart(r.Context(), sessionFrom(r), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.IsClarification {
		writeJSON(w, assistResponse{Clarification: res.ClarificationMessage})
		return
	}
	d.mu.Lock()
	d.pending = res
	d.mu.Unlock()
	writeJSON(w, assistResponse{Proposal: res.Proposal, Items: res.Items, Totals: &res.Totals})
}

// acceptAssist handles POST /api/drafts/{draft}/assist/accept and appends the
// pending suggestion's lines.
func (h *Handler) acceptAssist(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()
	if pending == nil {
		writeError(w, r, "no pending suggestion for this draft", "CONFLICT", http.StatusConflict)
		return
	}
	d.editor.Append(pending.Items...)
	writeJSON(w, d.view(decimal.Zero))
}
