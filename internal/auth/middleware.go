package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/logger"
)

type ctxKey int8

const ctxKeyClaims ctxKey = iota

// Required rejects requests without a valid token.
func (t *Tokens) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := tokenFromHeader(r)
		if !ok {
			errresponse.Respond(w, r, ErrMissingToken)

			return
		}

		claims, err := t.Parse(raw)
		if err != nil {
			errresponse.Respond(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Optional attaches the claims of a valid token and ignores anything else.
func (t *Tokens) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := tokenFromHeader(r); ok {
			claims, err := t.Parse(raw)
			if err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			} else {
				logger.FromContext(r.Context()).Debugw("ignoring token", "error", err)
			}
		}

		next.ServeHTTP(w, r)
	})
}

// tokenFromHeader accepts both "Token <jwt>" and "Bearer <jwt>".
func tokenFromHeader(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 {
		return "", false
	}

	if !strings.EqualFold(parts[0], "Token") && !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	raw := strings.TrimSpace(parts[1])

	return raw, raw != ""
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(*Claims)

	return c, ok
}

// UserID returns the authenticated user id or 0 for anonymous requests.
func UserID(ctx context.Context) int64 {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.UserID
	}

	return 0
}
