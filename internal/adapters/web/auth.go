package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pos-admin/internal/backend"
	"pos-admin/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	authCookie = "auth_token"
	sessionTTL = 8 * time.Hour
)

type authKey struct{}

// authContext is what RequireAuth stores on the request.
type authContext struct {
	SessionID string
	Session   *core.Session
}

func authFromContext(ctx context.Context) *authContext {
	v, _ := ctx.Value(authKey{}).(*authContext)
	return v
}

// sessionFrom returns the backend session for the authenticated request, or nil.
func sessionFrom(r *http.Request) *core.Session {
	if a := authFromContext(r.Context()); a != nil {
		return a.Session
	}
	return nil
}

// jwtClaims is the cookie payload. The backend bearer token never leaves the
// server; the cookie only names the server-side session.
type jwtClaims struct {
	SessionID string `json:"sid"`
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) parseToken(raw string) (*jwtClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth is chi middleware that validates the auth_token cookie, resolves
// its server-side session and injects it into the request context. Returns 401
// if the token is absent, invalid, or its session has expired.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookie)
		if err != nil {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		claims, err := h.parseToken(cookie.Value)
		if err != nil {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		sess, ok := h.sessions.get(claims.SessionID)
		if !ok {
			writeError(w, r, "session expired", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authKey{}, &authContext{SessionID: claims.SessionID, Session: sess})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, "username and password are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	sid := uuid.NewString()
	claims := &jwtClaims{
		SessionID: sid,
		UserID:    sess.UserID,
		Role:      sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, "token generation failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	h.sessions.put(sid, sess)

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	writeJSON(w, meView(sess))
}

// logout handles POST /api/auth/logout. It drops the server-side session with
// its open drafts and clears the cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(authCookie); err == nil {
		if claims, err := h.parseToken(cookie.Value); err == nil {
			h.sessions.delete(claims.SessionID)
			h.drafts.deleteWhere(func(d *draftEntry) bool { return d.owner == claims.SessionID })
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

func meView(s *core.Session) meResponse {
	return meResponse{UserID: s.UserID, Username: s.Username, Role: s.Role, IsAdmin: s.IsAdmin()}
}

// me handles GET /api/auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	writeJSON(w, meView(sess))
}
