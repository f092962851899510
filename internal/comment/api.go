package comment

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/articlerequest"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/logger"
)

var errInvalidID = errs.BadRequest("comment.invalid_id", nil)

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

// Create comments the article loaded by article.ArticleCtx.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	v, err := a.svc.Create(r.Context(), auth.UserID(r.Context()), article.ArticleFromContext(r.Context()), data.Comment.Body)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusCreated, &articleresponse.CommentResponse{
		Comment: articleresponse.NewCommentPayload(v.Comment, v.Following),
	})
}

func (a *API) List(w http.ResponseWriter, r *http.Request) {
	views, err := a.svc.List(r.Context(), auth.UserID(r.Context()), article.ArticleFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	rd := &articleresponse.CommentListResponse{Comments: make([]*articleresponse.CommentPayload, 0, len(views))}
	for _, v := range views {
		rd.Comments = append(rd.Comments, articleresponse.NewCommentPayload(v.Comment, v.Following))
	}

	respond(w, r, http.StatusOK, rd)
}

func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		errresponse.Respond(w, r, errInvalidID)

		return
	}

	if err := a.svc.Delete(r.Context(), auth.UserID(r.Context()), article.ArticleFromContext(r.Context()), id); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
