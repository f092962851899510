package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

type ctxKey int8

const (
	ctxKeyArticle ctxKey = iota
	ctxKeyPage
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var errInvalidPagination = errs.BadRequest("common.invalid_pagination", nil)

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. In case
// the Article could not be found or the caller may not see it,
// we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		article, err := a.svc.Visible(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "slug"))
		if err != nil {
			errresponse.Respond(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithArticle(r.Context(), article)))
	})
}

func WithArticle(ctx context.Context, a *model.Article) context.Context {
	return context.WithValue(ctx, ctxKeyArticle, a)
}

// ArticleFromContext returns the article loaded by ArticleCtx.
func ArticleFromContext(ctx context.Context) *model.Article {
	a, _ := ctx.Value(ctxKeyArticle).(*model.Article)

	return a
}

// Paginate reads limit and offset from the query. Limit defaults to
// DefaultLimit and is capped at MaxLimit.
func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r)
		if err != nil {
			errresponse.Respond(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyPage, p)))
	})
}

func parsePage(r *http.Request) (Page, error) {
	p := Page{Limit: DefaultLimit}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, errInvalidPagination
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		p.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return p, errInvalidPagination
		}
		p.Offset = offset
	}

	return p, nil
}

// PageFromContext returns the page set by Paginate or the default page.
func PageFromContext(ctx context.Context) Page {
	if p, ok := ctx.Value(ctxKeyPage).(Page); ok {
		return p
	}

	return Page{Limit: DefaultLimit}
}
