package backend

import (
	"context"
	"fmt"
	"net/http"

	"pos-admin/internal/core"
)

func (c *Client) ListUsers(ctx context.Context, sess *core.Session) ([]core.User, error) {
	var out []core.User
	if err := c.do(ctx, sess, http.MethodGet, "/usuarios", nil, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, sess *core.Session, id int) (*core.User, error) {
	var out core.User
	if err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/usuarios/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error) {
	var out core.User
	if err := c.do(ctx, sess, http.MethodPost, "/usuarios", u, &out); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

// UpdateUser saves u. An empty Password leaves the stored password unchanged.
func (c *Client) UpdateUser(ctx context.Context, sess *core.Session, u core.User) (*core.User, error) {
	var out core.User
	if err := c.do(ctx, sess, http.MethodPut, fmt.Sprintf("/usuarios/%d", u.ID), u, &out); err != nil {
		return nil, fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, sess *core.Session, id int) error {
	if err := c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/usuarios/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
