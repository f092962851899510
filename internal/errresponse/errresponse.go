// Package errresponse renders application errors as localized JSON bodies.
package errresponse

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/i18n"
	"github.com/SergeyParamoshkin/blog/internal/logger"
)

type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusCode int            `json:"statusCode"`
	Timestamp  string         `json:"timestamp"`
	Path       string         `json:"path"`
	Message    string         `json:"message"`
	Errors     []FieldMessage `json:"errors,omitempty"`

	Key    string            `json:"-"`
	Args   errs.Args         `json:"-"`
	Fields []errs.FieldError `json:"-"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	loc := i18n.FromContext(r.Context())

	e.StatusCode = e.HTTPStatusCode
	e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	e.Path = r.URL.Path
	e.Message = loc.T(e.Key, e.Args)

	for _, f := range e.Fields {
		args := errs.Args{"field": f.Field}
		for k, v := range f.Args {
			args[k] = v
		}
		e.Errors = append(e.Errors, FieldMessage{Field: f.Field, Message: loc.T(f.Key, args)})
	}

	if e.HTTPStatusCode >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Errorw("request failed", "error", e.Err)
	}

	render.Status(r, e.HTTPStatusCode)

	return nil
}

// From builds the response for any error. Errors that are not application
// errors become a 500.
func From(err error) *ErrResponse {
	e, ok := errs.As(err)
	if !ok {
		e = errs.Internal(err)
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: e.Status,
		Key:            e.Key,
		Args:           e.Args,
		Fields:         e.Fields,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return From(errs.Invalid(err))
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Key:            "common.render_failed",
	}
}

func ErrNotFound() render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusNotFound, Key: "common.route_not_found"}
}

func ErrMethodNotAllowed() render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusMethodNotAllowed, Key: "common.method_not_allowed"}
}

// Respond renders err and logs when even that fails.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	Render(w, r, From(err))
}

func Render(w http.ResponseWriter, r *http.Request, rd render.Renderer) {
	if err := render.Render(w, r, rd); err != nil {
		logger.FromContext(r.Context()).Errorw("render error response", "error", err)
	}
}

// NotFound and MethodNotAllowed are router fallbacks.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Render(w, r, ErrNotFound())
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Render(w, r, ErrMethodNotAllowed())
}
