package comment

import (
	"context"
	"fmt"

	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

var ErrForbidden = errs.Forbidden("comment.forbidden", nil)

func notFound(id int64) *errs.Error {
	return errs.NotFound("comment.not_found", errs.Args{"id": id})
}

type Service struct {
	store *Store
	users *user.Store
}

func NewService(store *Store, users *user.Store) *Service {
	return &Service{store: store, users: users}
}

// View is a comment decorated for one viewer.
type View struct {
	Comment   *model.Comment
	Following bool
}

func (s *Service) Create(ctx context.Context, authorID int64, a *model.Article, body string) (*View, error) {
	author, err := s.users.ByID(ctx, authorID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, user.ErrUserGone
		}

		return nil, fmt.Errorf("find author %d: %w", authorID, err)
	}

	c := &model.Comment{Body: body, AuthorID: authorID, ArticleID: a.ID}
	if err := s.store.Create(ctx, c, a); err != nil {
		return nil, fmt.Errorf("create comment on %s: %w", a.Slug, err)
	}
	c.Author = author

	return &View{Comment: c}, nil
}

func (s *Service) List(ctx context.Context, viewerID int64, a *model.Article) ([]*View, error) {
	comments, err := s.store.ByArticle(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments of %s: %w", a.Slug, err)
	}

	authors := make([]int64, 0, len(comments))
	for _, c := range comments {
		authors = append(authors, c.AuthorID)
	}

	following, err := s.users.FollowingSet(ctx, viewerID, authors)
	if err != nil {
		return nil, fmt.Errorf("load follows: %w", err)
	}

	views := make([]*View, 0, len(comments))
	for _, c := range comments {
		views = append(views, &View{Comment: c, Following: following[c.AuthorID]})
	}

	return views, nil
}

// Delete removes a comment of a written by viewerID.
func (s *Service) Delete(ctx context.Context, viewerID int64, a *model.Article, id int64) error {
	c, err := s.store.ByID(ctx, a.ID, id)
	if err != nil {
		if database.IsNotFound(err) {
			return notFound(id)
		}

		return fmt.Errorf("find comment %d: %w", id, err)
	}

	if c.AuthorID != viewerID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, c, a); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}

	return nil
}
