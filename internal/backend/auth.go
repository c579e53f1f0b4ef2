package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pos-admin/internal/core"
)

type loginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"usuario"`
}

// Login exchanges credentials for a session carrying the backend bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*core.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	var resp loginResponse
	if err := c.do(ctx, nil, http.MethodPost, "/auth/login", loginRequest{username, password}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("login: backend returned no token")
	}

	sess := &core.Session{
		UserID:   resp.User.ID,
		Username: resp.User.Username,
		Role:     resp.User.Role,
		Token:    resp.Token,
	}
	if sess.Username == "" {
		sess.Username = username
	}
	return sess, nil
}
