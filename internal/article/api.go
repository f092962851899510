package article

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/articlerequest"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/logger"
	"github.com/SergeyParamoshkin/blog/internal/validation"
)

type API struct {
	svc *Service
}

func NewAPI(svc *Service) *API {
	return &API{svc: svc}
}

func respond(w http.ResponseWriter, r *http.Request, status int, rd render.Renderer) {
	render.Status(r, status)
	if err := render.Render(w, r, rd); err != nil {
		err = render.Render(w, r, errresponse.ErrRender(err))
		if err != nil {
			logger.FromContext(r.Context()).Errorw(err.Error())
		}
	}
}

func articleResponse(v *View) *articleresponse.ArticleResponse {
	return articleresponse.NewArticleResponse(v.Article, v.Favorited, v.Following)
}

func listResponse(l *List) *articleresponse.ArticleListResponse {
	rd := &articleresponse.ArticleListResponse{
		Articles:      make([]*articleresponse.ArticlePayload, 0, len(l.Views)),
		ArticlesCount: l.Count,
	}
	for _, v := range l.Views {
		rd.Articles = append(rd.Articles, articleresponse.NewArticlePayload(v.Article, v.Favorited, v.Following))
	}

	return rd
}

// List returns published articles filtered by tag, author and favorited.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	l, err := a.svc.List(r.Context(), auth.UserID(r.Context()), ListQuery{
		Tag:       q.Get("tag"),
		Author:    q.Get("author"),
		Favorited: q.Get("favorited"),
		Page:      PageFromContext(r.Context()),
	})
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, listResponse(l))
}

func (a *API) Feed(w http.ResponseWriter, r *http.Request) {
	l, err := a.svc.Feed(r.Context(), auth.UserID(r.Context()), PageFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, listResponse(l))
}

func (a *API) Drafts(w http.ResponseWriter, r *http.Request) {
	l, err := a.svc.Drafts(r.Context(), auth.UserID(r.Context()), PageFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, listResponse(l))
}

func (a *API) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Statistics(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, stats)
}

// Publish publishes a batch of the caller's drafts.
func (a *API) Publish(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.PublishRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	res, err := a.svc.Publish(r.Context(), auth.UserID(r.Context()), data.ArticleSlugs)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, res)
}

func (a *API) Popular(w http.ResponseWriter, r *http.Request) {
	p := PageFromContext(r.Context())

	views, err := a.svc.Popular(r.Context(), auth.UserID(r.Context()), p.Limit)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, listResponse(&List{Views: views, Count: len(views)}))
}

func (a *API) Tags(w http.ResponseWriter, r *http.Request) {
	names, err := a.svc.Tags(r.Context())
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, &articleresponse.TagListResponse{Tags: names})
}

// Create persists the posted Article and returns it
// back to the client as an acknowledgement.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	v, err := a.svc.Create(r.Context(), auth.UserID(r.Context()), Draft{
		Title:       data.Article.Title,
		Description: data.Article.Description,
		Body:        data.Article.Body,
		TagList:     data.Article.TagList,
		Status:      data.Article.Status,
	})
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusCreated, articleResponse(v))
}

// Get returns the article loaded by ArticleCtx.
func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	v, err := a.svc.View(r.Context(), auth.UserID(r.Context()), ArticleFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, articleResponse(v))
}

func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.UpdateRequest{}
	if err := validation.BindStrict(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	v, err := a.svc.Update(r.Context(), auth.UserID(r.Context()), ArticleFromContext(r.Context()), Patch{
		Title:       data.Article.Title,
		Description: data.Article.Description,
		Body:        data.Article.Body,
		TagList:     data.Article.TagList,
	})
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, articleResponse(v))
}

func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), auth.UserID(r.Context()), ArticleFromContext(r.Context())); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) SetStatus(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.StatusRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	v, err := a.svc.SetStatus(r.Context(), auth.UserID(r.Context()), ArticleFromContext(r.Context()), data.Status)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, articleResponse(v))
}

func (a *API) Favorite(w http.ResponseWriter, r *http.Request) {
	v, err := a.svc.Favorite(r.Context(), auth.UserID(r.Context()), ArticleFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, articleResponse(v))
}

func (a *API) Unfavorite(w http.ResponseWriter, r *http.Request) {
	v, err := a.svc.Unfavorite(r.Context(), auth.UserID(r.Context()), ArticleFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, articleResponse(v))
}

func (res *PublishResult) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (s *Statistics) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
