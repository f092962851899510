package articlerequest

import (
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/validation"
)

var errMissingArticle = errs.BadRequest("article.missing_payload", nil)

// ArticleRequest is the request payload for creating an Article.
type ArticleRequest struct {
	Article *NewArticle `json:"article"`
}

type NewArticle struct {
	Title       string              `json:"title" validate:"required,max=255"`
	Description string              `json:"description" validate:"required"`
	Body        string              `json:"body" validate:"required"`
	TagList     []string            `json:"tagList" validate:"omitempty,dive,max=64"`
	Status      model.ArticleStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

// Bind on ArticleRequest will run after the unmarshalling is complete, its
// a good time to focus some post-processing after a decoding.
func (a *ArticleRequest) Bind(r *http.Request) error {
	if a.Article == nil {
		return errMissingArticle
	}

	a.Article.Title = strings.TrimSpace(a.Article.Title)

	return validation.Struct(a.Article)
}

// UpdateRequest changes only the fields present in the body.
type UpdateRequest struct {
	Article *ArticleChanges `json:"article"`
}

type ArticleChanges struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	Body        *string   `json:"body" validate:"omitempty,min=1"`
	TagList     *[]string `json:"tagList" validate:"omitempty,dive,max=64"`
}

func (u *UpdateRequest) Bind(r *http.Request) error {
	if u.Article == nil {
		return errMissingArticle
	}

	if u.Article.Title != nil {
		title := strings.TrimSpace(*u.Article.Title)
		u.Article.Title = &title
	}

	return validation.Struct(u.Article)
}

type StatusRequest struct {
	Status model.ArticleStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
}

func (s *StatusRequest) Bind(r *http.Request) error {
	return validation.Struct(s)
}

type PublishRequest struct {
	ArticleSlugs []string `json:"articleSlugs" validate:"required,min=1,max=100,dive,required"`
}

func (p *PublishRequest) Bind(r *http.Request) error {
	return validation.Struct(p)
}

type CommentRequest struct {
	Comment *NewComment `json:"comment"`
}

type NewComment struct {
	Body string `json:"body" validate:"required"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	if c.Comment == nil {
		return errs.BadRequest("comment.missing_payload", nil)
	}

	c.Comment.Body = strings.TrimSpace(c.Comment.Body)

	return validation.Struct(c.Comment)
}
