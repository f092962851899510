package articleresponse

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/userpayload"
)

// ArticlePayload is an article as seen by the viewer.
type ArticlePayload struct {
	Slug           string                      `json:"slug"`
	Title          string                      `json:"title"`
	Description    string                      `json:"description"`
	Body           string                      `json:"body"`
	TagList        []string                    `json:"tagList"`
	Status         model.ArticleStatus         `json:"status"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
	PublishedAt    *time.Time                  `json:"publishedAt"`
	Favorited      bool                        `json:"favorited"`
	FavoritesCount int                         `json:"favoritesCount"`
	CommentsCount  int                         `json:"commentsCount"`
	Author         *userpayload.ProfilePayload `json:"author"`
}

func NewArticlePayload(a *model.Article, favorited, following bool) *ArticlePayload {
	return &ArticlePayload{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        a.TagNames(),
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		PublishedAt:    a.PublishedAt,
		Favorited:      favorited,
		FavoritesCount: a.FavoritesCount,
		CommentsCount:  a.CommentsCount,
		Author:         userpayload.NewProfilePayload(a.Author, following),
	}
}

func (rd *ArticlePayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleResponse is the response payload for a single Article.
//
// In the ArticleResponse object, first a Render() is called on itself,
// then the next field, and so on, all the way down the tree.
type ArticleResponse struct {
	Article *ArticlePayload `json:"article"`
}

func NewArticleResponse(a *model.Article, favorited, following bool) *ArticleResponse {
	return &ArticleResponse{Article: NewArticlePayload(a, favorited, following)}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ArticleListResponse struct {
	Articles      []*ArticlePayload `json:"articles"`
	ArticlesCount int               `json:"articlesCount"`
}

func (rd *ArticleListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Articles == nil {
		rd.Articles = []*ArticlePayload{}
	}

	return nil
}

// CommentPayload is a comment as seen by the viewer.
type CommentPayload struct {
	ID        int64                       `json:"id"`
	Body      string                      `json:"body"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
	Author    *userpayload.ProfilePayload `json:"author"`
}

func NewCommentPayload(c *model.Comment, following bool) *CommentPayload {
	return &CommentPayload{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    userpayload.NewProfilePayload(c.Author, following),
	}
}

func (rd *CommentPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type CommentResponse struct {
	Comment *CommentPayload `json:"comment"`
}

func (rd *CommentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type CommentListResponse struct {
	Comments []*CommentPayload `json:"comments"`
}

func (rd *CommentListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Comments == nil {
		rd.Comments = []*CommentPayload{}
	}

	return nil
}

type TagListResponse struct {
	Tags []string `json:"tags"`
}

func (rd *TagListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Tags == nil {
		rd.Tags = []string{}
	}

	return nil
}

var (
	_ render.Renderer = (*ArticleListResponse)(nil)
	_ render.Renderer = (*CommentListResponse)(nil)
)
