package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"pos-admin/internal/core"
)

func (c *Client) ListProducts(ctx context.Context, sess *core.Session) ([]core.Product, error) {
	var out []core.Product
	if err := c.do(ctx, sess, http.MethodGet, "/productos", nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// SearchProducts runs the backend's name/code search for q.
func (c *Client) SearchProducts(ctx context.Context, sess *core.Session, q string) ([]core.Product, error) {
	out := []core.Product{}
	path := "/productos/buscar?q=" + url.QueryEscape(q)
	if err := c.do(ctx, sess, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("search products %q: %w", q, err)
	}
	return out, nil
}

// AdjustStock applies a signed stock correction and returns the updated product.
func (c *Client) AdjustStock(ctx context.Context, sess *core.Session, adj core.StockAdjustment) (*core.Product, error) {
	var out core.Product
	path := fmt.Sprintf("/productos/%d/ajuste-stock", adj.ProductID)
	if err := c.do(ctx, sess, http.MethodPost, path, adj, &out); err != nil {
		return nil, fmt.Errorf("adjust stock for product %d: %w", adj.ProductID, err)
	}
	return &out, nil
}
