package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pos-admin/internal/ai"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

var (
	// ErrHeldCartsDisabled is returned by held cart operations when no local database is configured.
	ErrHeldCartsDisabled = errors.New("held carts are disabled: DATABASE_URL not set")
	// ErrAssistantDisabled is returned by SuggestCart when no OpenAI key is configured.
	ErrAssistantDisabled = errors.New("cart assistant is disabled: OPENAI_API_KEY not set")
	// ErrForbidden is returned when a non-admin calls an admin operation.
	ErrForbidden = errors.New("operation requires an admin session")
	// ErrNotEditable is returned when opening a quotation that is no longer pending.
	ErrNotEditable = errors.New("quotation can no longer be edited")
)

// invalid wraps a single rule violation so adapters can report it as bad input.
func invalid(problem string) error {
	return &core.ValidationError{Problems: []string{problem}}
}

// Backend is the subset of the REST client the service depends on.
type Backend interface {
	Login(ctx context.Context, username, password string) (*core.Session, error)

	ListProducts(ctx context.Context, sess *core.Session) ([]core.Product, error)
	SearchProducts(ctx context.Context, sess *core.Session, q string) ([]core.Product, error)
	AdjustStock(ctx context.Context, sess *core.Session, adj core.StockAdjustment) (*core.Product, error)

	ListClients(ctx context.Context, sess *core.Session) ([]core.Client, error)
	GetClient(ctx context.Context, sess *core.Session, id int) (*core.Client, error)
	CreateClient(ctx context.Context, sess *core.Session, c core.Client) (*core.Client, error)
	UpdateClient(ctx context.Context, sess *core.Session, c core.Client) (*core.Client, error)
	DeleteClient(ctx context.Context, sess *core.Session, id int) error

	ListQuotations(ctx context.Context, sess *core.Session) ([]core.Quotation, error)
	GetQuotation(ctx context.Context, sess *core.Session, id int) (*core.Quotation, error)
	CreateQuotation(ctx context.Context, sess *core.Session, p core.QuotationPayload) (*core.Quotation, error)
	DeleteQuotation(ctx context.Context, sess *core.Session, id int) error
	GetQuotationDetail(ctx context.Context, sess *core.Session, id int) ([]core.LinePayload, error)
	UpdateQuotationDetail(ctx context.Context, sess *core.Session, id int, p core.QuotationDetailPayload) error

	CreateSale(ctx context.Context, sess *core.Session, p *core.SalePayload) (*core.Sale, error)

	ListUsers(ctx context.Context, sess *core.Session) ([]core.User, error)
	CreateUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error)
	UpdateUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error)
	DeleteUser(ctx context.Context, sess *core.Session, id int) error

	DashboardMetrics(ctx context.Context, sess *core.Session) (*core.DashboardMetrics, error)
}

// Options tunes editor behaviour.
type Options struct {
	SearchDebounce time.Duration
	NumericPolicy  core.NumericPolicy
}

type appService struct {
	api       Backend
	heldCarts core.HeldCartService
	agent     ai.AgentService
	opts      Options
	logger    *slog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// heldCarts and agent may be nil; the operations that need them then fail with
// ErrHeldCartsDisabled and ErrAssistantDisabled.
func NewAppService(
	api Backend,
	heldCarts core.HeldCartService,
	agent ai.AgentService,
	opts Options,
	logger *slog.Logger,
) ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &appService{
		api:       api,
		heldCarts: heldCarts,
		agent:     agent,
		opts:      opts,
		logger:    logger,
	}
}

func requireSession(sess *core.Session) error {
	if !sess.Valid() {
		return core.ErrNoSession
	}
	return nil
}

func requireAdmin(sess *core.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *appService) Login(ctx context.Context, username, password string) (*core.Session, error) {
	sess, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("operator logged in", "user", sess.Username, "role", sess.Role)
	return sess, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, sess *core.Session) (*ProductListResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	products, err := s.api.ListProducts(ctx, sess)
	if err != nil {
		return nil, err
	}
	return productList(products), nil
}

func (s *appService) SearchProducts(ctx context.Context, sess *core.Session, query string) (*ProductListResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return &ProductListResult{Products: []core.Product{}}, nil
	}
	products, err := s.api.SearchProducts(ctx, sess, query)
	if err != nil {
		return nil, err
	}
	return productList(products), nil
}

func productList(products []core.Product) *ProductListResult {
	res := &ProductListResult{Products: products}
	for _, p := range products {
		if p.LowStock() {
			res.LowStock++
		}
	}
	return res
}

func (s *appService) AdjustStock(ctx context.Context, sess *core.Session, req AdjustStockRequest) (*core.Product, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var problems []string
	if req.ProductID <= 0 {
		problems = append(problems, "product id is required")
	}
	if req.Quantity.IsZero() {
		problems = append(problems, "adjustment quantity must not be zero")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		problems = append(problems, "adjustment reason is required")
	}
	if len(problems) > 0 {
		return nil, &core.ValidationError{Problems: problems}
	}
	p, err := s.api.AdjustStock(ctx, sess, core.StockAdjustment{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjusted", "product", req.ProductID, "quantity", req.Quantity.String(), "user", sess.Username)
	return p, nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

func (s *appService) ListClients(ctx context.Context, sess *core.Session) (*ClientListResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	clients, err := s.api.ListClients(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) GetClient(ctx context.Context, sess *core.Session, id int) (*core.Client, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.api.GetClient(ctx, sess, id)
}

func (s *appService) SaveClient(ctx context.Context, sess *core.Session, c core.Client) (*core.Client, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.DocumentNumber = strings.TrimSpace(c.DocumentNumber)
	if c.Name == "" {
		return nil, invalid("client name is required")
	}
	if c.ID == 0 {
		return s.api.CreateClient(ctx, sess, c)
	}
	return s.api.UpdateClient(ctx, sess, c)
}

func (s *appService) DeleteClient(ctx context.Context, sess *core.Session, id int) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.api.DeleteClient(ctx, sess, id)
}

// ── Quotations ───────────────────────────────────────────────────────────────

func (s *appService) ListQuotations(ctx context.Context, sess *core.Session) (*QuotationListResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	qs, err := s.api.ListQuotations(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &QuotationListResult{Quotations: qs}, nil
}

func (s *appService) GetQuotation(ctx context.Context, sess *core.Session, id int) (*QuotationResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	q, err := s.api.GetQuotation(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.api.GetQuotationDetail(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	q.Detail = lines
	items := core.LineItemsFromPayload(lines)
	return &QuotationResult{Quotation: q, Items: items, Totals: core.ComputeTotals(items, decimal.Zero)}, nil
}

func (s *appService) DeleteQuotation(ctx context.Context, sess *core.Session, id int) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.api.DeleteQuotation(ctx, sess, id)
}

// ── Editors ──────────────────────────────────────────────────────────────────

func (s *appService) newEditor(sess *core.Session, kind core.EditorKind, items []core.LineItem) *core.Editor {
	lookup := core.NewProductLookup(
		core.ProductSearchFunc(func(ctx context.Context, q string) ([]core.Product, error) {
			return s.api.SearchProducts(ctx, sess, q)
		}),
		s.opts.SearchDebounce,
		s.logger,
	)
	return core.NewEditor(kind, core.NewDraftFrom(s.opts.NumericPolicy, items), lookup)
}

func (s *appService) NewCartEditor(sess *core.Session) *core.Editor {
	return s.newEditor(sess, core.EditorCart, nil)
}

func (s *appService) OpenQuotationEditor(ctx context.Context, sess *core.Session, id int) (*core.Editor, error) {
	res, err := s.GetQuotation(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !res.Quotation.Editable() {
		return nil, fmt.Errorf("quotation %d is %s: %w", id, res.Quotation.Status, ErrNotEditable)
	}
	ed := s.newEditor(sess, core.EditorQuotation, res.Items)
	ed.QuotationID = id
	ed.CustomerID = res.Quotation.ClientID
	return ed, nil
}

func (s *appService) SaveQuotationEditor(ctx context.Context, sess *core.Session, ed *core.Editor) (*QuotationResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if ed.Kind != core.EditorQuotation || ed.QuotationID == 0 {
		return nil, invalid("editor is not bound to a quotation")
	}
	items := ed.Draft().Items()
	payload, err := core.AssembleQuotationDetail(items)
	if err != nil {
		return nil, err
	}
	if err := s.api.UpdateQuotationDetail(ctx, sess, ed.QuotationID, *payload); err != nil {
		return nil, err
	}
	s.logger.Info("quotation detail saved", "quotation", ed.QuotationID, "lines", len(items),
		"total", payload.Total.String(), "user", sess.Username)
	return &QuotationResult{
		Quotation: &core.Quotation{
			ID:           ed.QuotationID,
			ClientID:     ed.CustomerID,
			Total:        payload.Total,
			TotalItems:   payload.TotalItems,
			TotalWithFee: payload.TotalWithFee,
			Detail:       payload.Lines,
		},
		Items:  items,
		Totals: ed.Draft().Totals(),
	}, nil
}

func (s *appService) SaveAsQuotation(ctx context.Context, sess *core.Session, ed *core.Editor) (*QuotationResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	items := ed.Draft().Items()
	detail, err := core.AssembleQuotationDetail(items)
	if err != nil {
		return nil, err
	}
	q, err := s.api.CreateQuotation(ctx, sess, core.QuotationPayload{
		CustomerID:             ed.CustomerID,
		UserID:                 sess.UserID,
		QuotationDetailPayload: *detail,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("quotation created", "quotation", q.ID, "lines", len(items), "user", sess.Username)
	return &QuotationResult{Quotation: q, Items: items, Totals: ed.Draft().Totals()}, nil
}

func (s *appService) Checkout(ctx context.Context, sess *core.Session, ed *core.Editor, req CheckoutRequest) (*CheckoutResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	in := core.SaleInput{
		Items:      ed.Draft().Items(),
		CustomerID: ed.CustomerID,
		Payment:    req.Payment,
		Shipping:   req.Shipping,
		Session:    sess,
		Notes:      req.Notes,
	}
	if req.CustomerID != nil {
		in.CustomerID = req.CustomerID
	}
	if ed.Kind == core.EditorQuotation && ed.QuotationID != 0 {
		id := ed.QuotationID
		in.QuotationID = &id
	}

	payload, err := core.AssembleSale(in)
	if err != nil {
		return nil, err
	}
	sale, err := s.api.CreateSale(ctx, sess, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale registered", "sale", sale.ID, "method", payload.Method,
		"total", payload.TotalWithFee.String(), "quotation", ed.QuotationID, "user", sess.Username)
	return &CheckoutResult{Sale: sale, Payload: payload}, nil
}

// ── Held carts ───────────────────────────────────────────────────────────────

func (s *appService) HoldCart(ctx context.Context, sess *core.Session, ed *core.Editor, label string) (*core.HeldCart, error) {
	if s.heldCarts == nil {
		return nil, ErrHeldCartsDisabled
	}
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var items []core.LineItem
	for _, it := range ed.Draft().Items() {
		if it.HasProduct() {
			items = append(items, it)
		}
	}
	return s.heldCarts.Hold(ctx, label, sess.Username, ed.CustomerID, items)
}

func (s *appService) ListHeldCarts(ctx context.Context) ([]core.HeldCart, error) {
	if s.heldCarts == nil {
		return nil, ErrHeldCartsDisabled
	}
	return s.heldCarts.List(ctx)
}

func (s *appService) ResumeHeldCart(ctx context.Context, sess *core.Session, id int) (*core.Editor, error) {
	if s.heldCarts == nil {
		return nil, ErrHeldCartsDisabled
	}
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	cart, err := s.heldCarts.Take(ctx, id)
	if err != nil {
		return nil, err
	}
	ed := s.newEditor(sess, core.EditorCart, cart.Items)
	ed.CustomerID = cart.CustomerID
	return ed, nil
}

func (s *appService) DiscardHeldCart(ctx context.Context, id int) error {
	if s.heldCarts == nil {
		return ErrHeldCartsDisabled
	}
	return s.heldCarts.Discard(ctx, id)
}

// ── Assistant ────────────────────────────────────────────────────────────────

func (s *appService) SuggestCart(ctx context.Context, sess *core.Session, text string) (*CartSuggestionResult, error) {
	if s.agent == nil {
		return nil, ErrAssistantDisabled
	}
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	catalog, err := s.api.ListProducts(ctx, sess)
	if err != nil {
		return nil, err
	}
	resp, err := s.agent.InterpretCartRequest(ctx, text, catalog)
	if err != nil {
		return nil, err
	}
	if resp.IsClarificationRequest {
		return &CartSuggestionResult{IsClarification: true, ClarificationMessage: resp.Clarification.Message}, nil
	}
	items := resp.Proposal.ToLineItems(core.CatalogIndex(catalog))
	return &CartSuggestionResult{
		Proposal: resp.Proposal,
		Items:    items,
		Totals:   core.ComputeTotals(items, decimal.Zero),
	}, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

func (s *appService) ListUsers(ctx context.Context, sess *core.Session) (*UserListResult, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.api.ListUsers(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &UserListResult{Users: users}, nil
}

func (s *appService) SaveUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return nil, invalid("username is required")
	}
	switch u.Role {
	case core.RoleAdmin, core.RoleSeller:
	case "":
		u.Role = core.RoleSeller
	default:
		return nil, invalid(fmt.Sprintf("unknown role %q", u.Role))
	}
	if u.ID == 0 {
		if u.Password == "" {
			return nil, invalid("password is required for a new user")
		}
		return s.api.CreateUser(ctx, sess, u)
	}
	return s.api.UpdateUser(ctx, sess, u)
}

func (s *appService) DeleteUser(ctx context.Context, sess *core.Session, id int) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if id == sess.UserID {
		return invalid("cannot delete the logged-in user")
	}
	return s.api.DeleteUser(ctx, sess, id)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func (s *appService) GetDashboard(ctx context.Context, sess *core.Session) (*core.DashboardMetrics, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.api.DashboardMetrics(ctx, sess)
}
