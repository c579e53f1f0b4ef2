package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// HeldCart is a checkout cart parked locally so the till can serve another customer.
type HeldCart struct {
	ID         int        `json:"id"`
	Label      string     `json:"label"`
	CustomerID *int       `json:"customer_id,omitempty"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []LineItem `json:"items"`
}

// Totals derives the cart totals without surcharge.
func (c HeldCart) Totals() Totals {
	return ComputeTotals(c.Items, decimal.Zero)
}

// ErrHeldCartNotFound is returned when a held cart id does not exist.
var ErrHeldCartNotFound = errors.New("held cart not found")

// HeldCartService parks and resumes checkout carts in the local PostgreSQL database.
type HeldCartService interface {
	// Hold stores items under label and returns the persisted cart.
	Hold(ctx context.Context, label, createdBy string, customerID *int, items []LineItem) (*HeldCart, error)
	// List returns all held carts, oldest first.
	List(ctx context.Context) ([]HeldCart, error)
	// Get returns a held cart with its lines.
	Get(ctx context.Context, id int) (*HeldCart, error)
	// Take returns a held cart and deletes it in the same transaction.
	Take(ctx context.Context, id int) (*HeldCart, error)
	// Discard deletes a held cart.
	Discard(ctx context.Context, id int) error
}

type heldCartService struct {
	pool *pgxpool.Pool
}

// NewHeldCartService constructs a HeldCartService backed by PostgreSQL.
func NewHeldCartService(pool *pgxpool.Pool) HeldCartService {
	return &heldCartService{pool: pool}
}

func (s *heldCartService) Hold(ctx context.Context, label, createdBy string, customerID *int, items []LineItem) (*HeldCart, error) {
	if len(items) == 0 {
		return nil, ErrEmptyDraft
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Cart " + time.Now().Format("15:04")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var cartID int
	err = tx.QueryRow(ctx, `
		INSERT INTO held_carts (label, customer_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id
	`, label, customerID, createdBy).Scan(&cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert held cart: %w", err)
	}

	for i, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO held_cart_lines (cart_id, line_number, product_id, product_code, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, cartID, i+1, it.ProductID, it.ProductCode, it.ProductName, it.Quantity, it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to insert held cart line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit held cart: %w", err)
	}
	return s.Get(ctx, cartID)
}

func (s *heldCartService) List(ctx context.Context) ([]HeldCart, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, label, customer_id, created_by, created_at
		FROM held_carts
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query held carts: %w", err)
	}
	defer rows.Close()

	var carts []HeldCart
	for rows.Next() {
		var c HeldCart
		if err := rows.Scan(&c.ID, &c.Label, &c.CustomerID, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan held cart: %w", err)
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate held carts: %w", err)
	}

	for i := range carts {
		items, err := s.loadLines(ctx, s.pool, carts[i].ID)
		if err != nil {
			return nil, err
		}
		carts[i].Items = items
	}
	return carts, nil
}

func (s *heldCartService) Get(ctx context.Context, id int) (*HeldCart, error) {
	return s.get(ctx, s.pool, id, false)
}

func (s *heldCartService) Take(ctx context.Context, id int) (*HeldCart, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cart, err := s.get(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM held_carts WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete held cart %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit held cart resume: %w", err)
	}
	return cart, nil
}

func (s *heldCartService) Discard(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM held_carts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete held cart %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("held cart %d: %w", id, ErrHeldCartNotFound)
	}
	return nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *heldCartService) get(ctx context.Context, q pgxQuerier, id int, forUpdate bool) (*HeldCart, error) {
	sql := "SELECT id, label, customer_id, created_by, created_at FROM held_carts WHERE id = $1"
	if forUpdate {
		sql += " FOR UPDATE"
	}
	var c HeldCart
	err := q.QueryRow(ctx, sql, id).Scan(&c.ID, &c.Label, &c.CustomerID, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("held cart %d: %w", id, ErrHeldCartNotFound)
		}
		return nil, fmt.Errorf("failed to fetch held cart %d: %w", id, err)
	}
	items, err := s.loadLines(ctx, q, id)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (s *heldCartService) loadLines(ctx context.Context, q pgxQuerier, cartID int) ([]LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, product_code, product_name, quantity, unit_price
		FROM held_cart_lines
		WHERE cart_id = $1
		ORDER BY line_number
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query held cart lines: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ProductID, &it.ProductCode, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan held cart line: %w", err)
		}
		it.recompute()
		items = append(items, it)
	}
	return items, rows.Err()
}
