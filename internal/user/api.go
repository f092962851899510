package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

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

// Register creates an account and returns it with a token.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	data := &RegisterRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	session, err := a.svc.Register(r.Context(), Registration{
		Username: data.User.Username,
		Email:    data.User.Email,
		Password: data.User.Password,
	})
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusCreated, NewUserResponse(session))
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	data := &LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	session, err := a.svc.Login(r.Context(), data.User.Email, data.User.Password)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, NewUserResponse(session))
}

// Current returns the user the token was issued to.
func (a *API) Current(w http.ResponseWriter, r *http.Request) {
	session, err := a.svc.Current(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, NewUserResponse(session))
}

func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	data := &UpdateRequest{}
	if err := validation.BindStrict(r, data); err != nil {
		errresponse.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	session, err := a.svc.Update(r.Context(), auth.UserID(r.Context()), data.Changes())
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, NewUserResponse(session))
}

func (a *API) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Profile(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, NewProfileResponse(p))
}

func (a *API) Follow(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Follow(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, NewProfileResponse(p))
}

func (a *API) Unfollow(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Unfollow(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	respond(w, r, http.StatusOK, NewProfileResponse(p))
}
