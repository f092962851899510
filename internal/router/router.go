package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/comment"
	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/i18n"
	"github.com/SergeyParamoshkin/blog/internal/logger"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

// Deps are the handlers and middleware the API router is built from.
// Metrics is optional.
type Deps struct {
	Logger   *zap.SugaredLogger
	Bundle   *i18n.Bundle
	Metrics  *metrics.Metrics
	Tokens   *auth.Tokens
	Users    *user.API
	Articles *article.API
	Comments *comment.API
}

func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(i18n.Middleware(d.Bundle))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(errresponse.NotFound)
	r.MethodNotAllowed(errresponse.MethodNotAllowed)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Debugw("ping")
		if _, err := w.Write([]byte("pong")); err != nil {
			logger.FromContext(r.Context()).Errorw(err.Error())
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/users", usersRouter(d))
		r.With(d.Tokens.Required).Get("/user", d.Users.Current)
		r.With(d.Tokens.Required).Put("/user", d.Users.Update)
		r.Mount("/profiles", profilesRouter(d))
		r.Mount("/articles", articlesRouter(d))
		r.Get("/tags", d.Articles.Tags)
	})

	return r
}

func usersRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Post("/", d.Users.Register)   // POST /api/users
	r.Post("/login", d.Users.Login) // POST /api/users/login

	return r
}

func profilesRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Route("/{username}", func(r chi.Router) {
		r.With(d.Tokens.Optional).Get("/", d.Users.Profile)
		r.With(d.Tokens.Required).Post("/follow", d.Users.Follow)
		r.With(d.Tokens.Required).Delete("/follow", d.Users.Unfollow)
	})

	return r
}

// articlesRouter serves articles and their comments. Static segments win
// over {slug}, Slugify keeps titles from producing them.
func articlesRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.With(d.Tokens.Optional, article.Paginate).Get("/", d.Articles.List)
	r.With(d.Tokens.Optional, article.Paginate).Get("/popular", d.Articles.Popular)

	r.Group(func(r chi.Router) {
		r.Use(d.Tokens.Required)
		r.Post("/", d.Articles.Create)
		r.With(article.Paginate).Get("/feed", d.Articles.Feed)
		r.With(article.Paginate).Get("/drafts", d.Articles.Drafts)
		r.Get("/statistics", d.Articles.Statistics)
		r.Post("/publish", d.Articles.Publish)
	})

	r.Route("/{slug}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(d.Tokens.Optional)
			r.Use(d.Articles.ArticleCtx) // Load the *Article on the request context
			r.Get("/", d.Articles.Get)
			r.Get("/comments", d.Comments.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.Tokens.Required)
			r.Use(d.Articles.ArticleCtx)
			r.Put("/", d.Articles.Update)
			r.Delete("/", d.Articles.Delete)
			r.Patch("/status", d.Articles.SetStatus)
			r.Post("/favorite", d.Articles.Favorite)
			r.Delete("/favorite", d.Articles.Unfavorite)
			r.Post("/comments", d.Comments.Create)
			r.Delete("/comments/{id}", d.Comments.Delete)
		})
	})

	return r
}

// NewDiag serves the prometheus metrics and the database health check.
func NewDiag(metricsHandler http.Handler, db *bun.DB) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := database.Health(r.Context(), db)
		if !status.Healthy {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, status)
	})

	return r
}
