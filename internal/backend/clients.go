package backend

import (
	"context"
	"fmt"
	"net/http"

	"pos-admin/internal/core"
)

func (c *Client) ListClients(ctx context.Context, sess *core.Session) ([]core.Client, error) {
	var out []core.Client
	if err := c.do(ctx, sess, http.MethodGet, "/clientes", nil, &out); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

func (c *Client) GetClient(ctx context.Context, sess *core.Session, id int) (*core.Client, error) {
	var out core.Client
	if err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/clientes/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get client %d: %w", id, err)
	}
	return &out, nil
}

func (c *Client) CreateClient(ctx context.Context, sess *core.Session, cl core.Client) (*core.Client, error) {
	var out core.Client
	if err := c.do(ctx, sess, http.MethodPost, "/clientes", cl, &out); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateClient(ctx context.Context, sess *core.Session, cl core.Client) (*core.Client, error) {
	var out core.Client
	if err := c.do(ctx, sess, http.MethodPut, fmt.Sprintf("/clientes/%d", cl.ID), cl, &out); err != nil {
		return nil, fmt.Errorf("update client %d: %w", cl.ID, err)
	}
	return &out, nil
}

func (c *Client) DeleteClient(ctx context.Context, sess *core.Session, id int) error {
	if err := c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/clientes/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	return nil
}
