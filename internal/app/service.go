package app

import (
	"context"

	"pos-admin/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Every operation that reaches the backend takes the operator's session explicitly.
type ApplicationService interface {
	// Login exchanges credentials for a backend session.
	Login(ctx context.Context, username, password string) (*core.Session, error)

	// ListProducts returns the catalog with stock levels.
	ListProducts(ctx context.Context, sess *core.Session) (*ProductListResult, error)

	// SearchProducts runs a one-off product search, bypassing the per-row debounce.
	SearchProducts(ctx context.Context, sess *core.Session, query string) (*ProductListResult, error)

	// AdjustStock applies a signed correction to a product's on-hand quantity.
	AdjustStock(ctx context.Context, sess *core.Session, req AdjustStockRequest) (*core.Product, error)

	ListClients(ctx context.Context, sess *core.Session) (*ClientListResult, error)
	GetClient(ctx context.Context, sess *core.Session, id int) (*core.Client, error)
	// SaveClient creates the client when ID is zero and updates it otherwise.
	SaveClient(ctx context.Context, sess *core.Session, c core.Client) (*core.Client, error)
	DeleteClient(ctx context.Context, sess *core.Session, id int) error

	ListQuotations(ctx context.Context, sess *core.Session) (*QuotationListResult, error)
	// GetQuotation returns the quotation header with its detail lines.
	GetQuotation(ctx context.Context, sess *core.Session, id int) (*QuotationResult, error)
	DeleteQuotation(ctx context.Context, sess *core.Session, id int) error

	// NewCartEditor starts an empty checkout cart.
	NewCartEditor(sess *core.Session) *core.Editor

	// OpenQuotationEditor loads a quotation's detail into an editor.
	// Converted or cancelled quotations cannot be edited.
	OpenQuotationEditor(ctx context.Context, sess *core.Session, id int) (*core.Editor, error)

	// SaveQuotationEditor writes the editor's rows back as the quotation detail.
	// On failure the editor is left untouched so the operator can retry.
	SaveQuotationEditor(ctx context.Context, sess *core.Session, ed *core.Editor) (*QuotationResult, error)

	// SaveAsQuotation creates a new quotation from the editor's rows.
	SaveAsQuotation(ctx context.Context, sess *core.Session, ed *core.Editor) (*QuotationResult, error)

	// Checkout assembles and registers a sale from the editor's rows. For a
	// quotation editor the sale converts that quotation.
	Checkout(ctx context.Context, sess *core.Session, ed *core.Editor, req CheckoutRequest) (*CheckoutResult, error)

	// HoldCart parks the editor's rows in the local database.
	HoldCart(ctx context.Context, sess *core.Session, ed *core.Editor, label string) (*core.HeldCart, error)
	ListHeldCarts(ctx context.Context) ([]core.HeldCart, error)
	// ResumeHeldCart removes a held cart and returns a cart editor holding its rows.
	ResumeHeldCart(ctx context.Context, sess *core.Session, id int) (*core.Editor, error)
	DiscardHeldCart(ctx context.Context, id int) error

	// SuggestCart asks the assistant to turn free text into cart lines.
	// Nothing is added to any editor until the operator accepts the suggestion.
	SuggestCart(ctx context.Context, sess *core.Session, text string) (*CartSuggestionResult, error)

	// Admin only.
	ListUsers(ctx context.Context, sess *core.Session) (*UserListResult, error)
	SaveUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error)
	DeleteUser(ctx context.Context, sess *core.Session, id int) error

	GetDashboard(ctx context.Context, sess *core.Session) (*core.DashboardMetrics, error)
}
