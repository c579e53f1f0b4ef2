package backend

import (
	"context"
	"fmt"
	"net/http"

	"pos-admin/internal/core"
)

// CreateSale registers a sale. Setting QuotationID on the payload converts that quotation.
func (c *Client) CreateSale(ctx context.Context, sess *core.Session, p *core.SalePayload) (*core.Sale, error) {
	var out core.Sale
	if err := c.do(ctx, sess, http.MethodPost, "/ventas", p, &out); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return &out, nil
}
