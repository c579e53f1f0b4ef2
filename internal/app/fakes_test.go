package app_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pos-admin/internal/backend"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory stand-in for the REST backend.
type fakeBackend struct {
	mu         sync.Mutex
	products   []core.Product
	clients    map[int]core.Client
	quotations map[int]*core.Quotation
	details    map[int][]core.LinePayload
	users      map[int]core.User
	sales      []*core.SalePayload
	nextID     int

	failDetailSave error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: []core.Product{
			{ID: 1, Code: "COL-R", Name: "Collar rojo", GeneralPrice: decimal.NewFromInt(15), Stock: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(2), IsActive: true},
			{ID: 2, Code: "ARN-M", Name: "Arnés M", GeneralPrice: decimal.RequireFromString("32.5"), Stock: decimal.NewFromInt(1), MinStock: decimal.NewFromInt(3), IsActive: true},
		},
		clients:    map[int]core.Client{},
		quotations: map[int]*core.Quotation{},
		details:    map[int][]core.LinePayload{},
		users:      map[int]core.User{},
		nextID:     100,
	}
}

func (f *fakeBackend) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*core.Session, error) {
	if password != "secret" {
		return nil, &backend.APIError{Status: 401, Message: "Credenciales inválidas"}
	}
	role := core.RoleSeller
	if username == "admin" {
		role = core.RoleAdmin
	}
	return &core.Session{UserID: 1, Username: username, Role: role, Token: "tok"}, nil
}

func (f *fakeBackend) ListProducts(ctx context.Context, sess *core.Session) ([]core.Product, error) {
	return f.products, nil
}

func (f *fakeBackend) SearchProducts(ctx context.Context, sess *core.Session, q string) ([]core.Product, error) {
	out := []core.Product{}
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) || strings.EqualFold(p.Code, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) AdjustStock(ctx context.Context, sess *core.Session, adj core.StockAdjustment) (*core.Product, error) {
	for i, p := range f.products {
		if p.ID == adj.ProductID {
			f.products[i].Stock = p.Stock.Add(adj.Quantity)
			out := f.products[i]
			return &out, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Message: "Producto no encontrado"}
}

func (f *fakeBackend) ListClients(ctx context.Context, sess *core.Session) ([]core.Client, error) {
	var out []core.Client
	for _, c := range f.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBackend) GetClient(ctx context.Context, sess *core.Session, id int) (*core.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, &backend.APIError{Status: 404}
	}
	return &c, nil
}

func (f *fakeBackend) CreateClient(ctx context.Context, sess *core.Session, c core.Client) (*core.Client, error) {
	c.ID = f.id()
	f.clients[c.ID] = c
	return &c, nil
}

func (f *fakeBackend) UpdateClient(ctx context.Context, sess *core.Session, c core.Client) (*core.Client, error) {
	if _, ok := f.clients[c.ID]; !ok {
		return nil, &backend.APIError{Status: 404}
	}
	f.clients[c.ID] = c
	return &c, nil
}

func (f *fakeBackend) DeleteClient(ctx context.Context, sess *core.Session, id int) error {
	delete(f.clients, id)
	return nil
}

func (f *fakeBackend) ListQuotations(ctx context.Context, sess *core.Session) ([]core.Quotation, error) {
	var out []core.Quotation
	for _, q := range f.quotations {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeBackend) GetQuotation(ctx context.Context, sess *core.Session, id int) (*core.Quotation, error) {
	q, ok := f.quotations[id]
	if !ok {
		return nil, fmt.Errorf("get quotation %d: %w", id, &backend.APIError{Status: 404, Message: "Cotización no encontrada"})
	}
	out := *q
	return &out, nil
}

func (f *fakeBackend) CreateQuotation(ctx context.Context, sess *core.Session, p core.QuotationPayload) (*core.Quotation, error) {
	q := &core.Quotation{ID: f.id(), ClientID: p.CustomerID, Status: core.QuotationPending,
		Total: p.Total, TotalItems: p.TotalItems, TotalWithFee: p.TotalWithFee, CreatedAt: time.Now()}
	f.quotations[q.ID] = q
	f.details[q.ID] = p.Lines
	out := *q
	return &out, nil
}

func (f *fakeBackend) DeleteQuotation(ctx context.Context, sess *core.Session, id int) error {
	delete(f.quotations, id)
	delete(f.details, id)
	return nil
}

func (f *fakeBackend) GetQuotationDetail(ctx context.Context, sess *core.Session, id int) ([]core.LinePayload, error) {
	return f.details[id], nil
}

func (f *fakeBackend) UpdateQuotationDetail(ctx context.Context, sess *core.Session, id int, p core.QuotationDetailPayload) error {
	if f.failDetailSave != nil {
		return f.failDetailSave
	}
	f.details[id] = p.Lines
	q := f.quotations[id]
	q.Total, q.TotalItems, q.TotalWithFee = p.Total, p.TotalItems, p.TotalWithFee
	return nil
}

func (f *fakeBackend) CreateSale(ctx context.Context, sess *core.Session, p *core.SalePayload) (*core.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales = append(f.sales, p)
	if p.QuotationID != nil {
		if q, ok := f.quotations[*p.QuotationID]; ok {
			q.Status = core.QuotationConverted
		}
	}
	return &core.Sale{ID: f.id(), Total: p.Total, TotalWithFee: p.TotalWithFee, Method: p.Method}, nil
}

func (f *fakeBackend) ListUsers(ctx context.Context, sess *core.Session) ([]core.User, error) {
	var out []core.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error) {
	u.ID = f.id()
	u.Password = ""
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeBackend) UpdateUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error) {
	u.Password = ""
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeBackend) DeleteUser(ctx context.Context, sess *core.Session, id int) error {
	delete(f.users, id)
	return nil
}

func (f *fakeBackend) DashboardMetrics(ctx context.Context, sess *core.Session) (*core.DashboardMetrics, error) {
	return &core.DashboardMetrics{SalesToday: decimal.NewFromInt(120), SalesCountToday: len(f.sales)}, nil
}

// memHeldCarts is an in-memory HeldCartService.
type memHeldCarts struct {
	carts map[int]core.HeldCart
	next  int
}

func newMemHeldCarts() *memHeldCarts { return &memHeldCarts{carts: map[int]core.HeldCart{}} }

func (m *memHeldCarts) Hold(ctx context.Context, label, createdBy string, customerID *int, items []core.LineItem) (*core.HeldCart, error) {
	if len(items) == 0 {
		return nil, core.ErrEmptyDraft
	}
	m.next++
	c := core.HeldCart{ID: m.next, Label: label, CreatedBy: createdBy, CustomerID: customerID, Items: items}
	m.carts[c.ID] = c
	return &c, nil
}

func (m *memHeldCarts) List(ctx context.Context) ([]core.HeldCart, error) {
	var out []core.HeldCart
	for _, c := range m.carts {
		out = append(out, c)
	}
	return out, nil
}

func (m *memHeldCarts) Get(ctx context.Context, id int) (*core.HeldCart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, core.ErrHeldCartNotFound
	}
	return &c, nil
}

func (m *memHeldCarts) Take(ctx context.Context, id int) (*core.HeldCart, error) {
	c, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(m.carts, id)
	return c, nil
}

func (m *memHeldCarts) Discard(ctx context.Context, id int) error {
	if _, ok := m.carts[id]; !ok {
		return core.ErrHeldCartNotFound
	}
	delete(m.carts, id)
	return nil
}

// fakeAgent returns a canned response.
type fakeAgent struct {
	resp *core.AgentResponse
	err  error
}

func (a *fakeAgent) InterpretCartRequest(ctx context.Context, request string, catalog []core.Product) (*core.AgentResponse, error) {
	return a.resp, a.err
}
