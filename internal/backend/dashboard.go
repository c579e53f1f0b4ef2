package backend

import (
	"context"
	"fmt"
	"net/http"

	"pos-admin/internal/core"
)

func (c *Client) DashboardMetrics(ctx context.Context, sess *core.Session) (*core.DashboardMetrics, error) {
	var out core.DashboardMetrics
	if err := c.do(ctx, sess, http.MethodGet, "/dashboard/metricas", nil, &out); err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}
	return &out, nil
}
