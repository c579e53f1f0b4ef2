package backend

import (
	"context"
	"fmt"
	"net/http"

	"pos-admin/internal/core"
)

func (c *Client) ListQuotations(ctx context.Context, sess *core.Session) ([]core.Quotation, error) {
	var out []core.Quotation
	if err := c.do(ctx, sess, http.MethodGet, "/cotizaciones", nil, &out); err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	return out, nil
}

func (c *Client) GetQuotation(ctx context.Context, sess *core.Session, id int) (*core.Quotation, error) {
	var out core.Quotation
	if err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/cotizaciones/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get quotation %d: %w", id, err)
	}
	return &out, nil
}

func (c *Client) CreateQuotation(ctx context.Context, sess *core.Session, p core.QuotationPayload) (*core.Quotation, error) {
	var out core.Quotation
	if err := c.do(ctx, sess, http.MethodPost, "/cotizaciones", p, &out); err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteQuotation(ctx context.Context, sess *core.Session, id int) error {
	if err := c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/cotizaciones/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete quotation %d: %w", id, err)
	}
	return nil
}

// GetQuotationDetail returns the line items of quotation id.
func (c *Client) GetQuotationDetail(ctx context.Context, sess *core.Session, id int) ([]core.LinePayload, error) {
	out := []core.LinePayload{}
	if err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/cotizaciones/%d/detalle", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get quotation %d detail: %w", id, err)
	}
	return out, nil
}

// UpdateQuotationDetail replaces the line items and aggregates of quotation id.
func (c *Client) UpdateQuotationDetail(ctx context.Context, sess *core.Session, id int, p core.QuotationDetailPayload) error {
	if err := c.do(ctx, sess, http.MethodPut, fmt.Sprintf("/cotizaciones/%d/detalle", id), p, nil); err != nil {
		return fmt.Errorf("update quotation %d detail: %w", id, err)
	}
	return nil
}
