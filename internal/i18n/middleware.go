package i18n

import (
	"context"
	"net/http"
)

type ctxKey int8

const ctxKeyLocalizer ctxKey = iota

// Resolve picks the language of r from the lang query parameter, the X-Lang
// header and Accept-Language, in that order. The first one present decides.
func (b *Bundle) Resolve(r *http.Request) string {
	if v := r.URL.Query().Get("lang"); v != "" {
		return b.Match(v)
	}

	if v := r.Header.Get("X-Lang"); v != "" {
		return b.Match(v)
	}

	if v := r.Header.Get("Accept-Language"); v != "" {
		return b.MatchAcceptLanguage(v)
	}

	return Fallback
}

// Middleware stores the request's Localizer in its context.
func Middleware(b *Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := b.Resolve(r)
			w.Header().Set("Content-Language", lang)

			ctx := WithLocalizer(r.Context(), b.Localizer(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithLocalizer(ctx context.Context, l Localizer) context.Context {
	return context.WithValue(ctx, ctxKeyLocalizer, l)
}

// FromContext returns the request Localizer, English if none was set.
func FromContext(ctx context.Context) Localizer {
	if l, ok := ctx.Value(ctxKeyLocalizer).(Localizer); ok {
		return l
	}

	return Default().Localizer(Fallback)
}
