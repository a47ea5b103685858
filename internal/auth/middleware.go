package auth

import (
	"context"
	"net/http"
)

type ctxUserKey struct{}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// FromContext returns the authenticated user, or nil for guests.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(ctxUserKey{}).(*User)
	return u
}

// resolve returns the user behind a valid token on r, if any.
func resolve(r *http.Request, t *Tokens, users *Users) *User {
	tok := t.FromRequest(r)
	if tok == "" {
		return nil
	}
	claims, err := t.Parse(tok)
	if err != nil {
		return nil
	}
	// Ensure user still exists
	u, err := users.FindByID(r.Context(), claims.ID)
	if err != nil {
		return nil
	}
	return u
}

// Optional decorates requests with the user when a valid token is present.
// It never rejects; guests pass through.
func Optional(t *Tokens, users *Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u := resolve(r, t, users); u != nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a valid token for an existing user.
func Require(t *Tokens, users *Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t.FromRequest(r) == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			u := resolve(r, t, users)
			if u == nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
