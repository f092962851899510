package comment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/testutil"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

type fixture struct {
	svc      *Service
	articles *article.Service
	users    *user.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	users := user.NewStore(db)

	return &fixture{
		svc:      NewService(NewStore(db), users),
		articles: article.NewService(article.NewStore(db), users, nil, nil),
		users:    users,
	}
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	t.Helper()

	u := &model.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))

	return u
}

func (f *fixture) article(t *testing.T, author *model.User) *model.Article {
	t.Helper()

	v, err := f.articles.Create(context.Background(), author.ID, article.Draft{
		Title:       "Commented",
		Description: "d",
		Body:        "b",
		Status:      model.StatusPublished,
	})
	require.NoError(t, err)

	return v.Article
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jake := f.user(t, "jake")
	anne := f.user(t, "anne")
	a := f.article(t, jake)

	first, err := f.svc.Create(ctx, anne.ID, a, "first")
	require.NoError(t, err)
	assert.NotZero(t, first.Comment.ID)
	assert.Equal(t, "anne", first.Comment.Author.Username)
	assert.Equal(t, 1, a.CommentsCount)

	_, err = f.svc.Create(ctx, jake.ID, a, "second")
	require.NoError(t, err)
	assert.Equal(t, 2, a.CommentsCount)

	require.NoError(t, f.users.Follow(ctx, jake.ID, anne.ID))

	views, err := f.svc.List(ctx, jake.ID, a)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "second", views[0].Comment.Body)
	assert.False(t, views[0].Following)
	assert.Equal(t, "first", views[1].Comment.Body)
	assert.True(t, views[1].Following)

	got, err := f.articles.Visible(ctx, 0, a.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jake := f.user(t, "jake")
	anne := f.user(t, "anne")
	a := f.article(t, jake)

	v, err := f.svc.Create(ctx, anne.ID, a, "mine")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, jake.ID, a, v.Comment.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	err = f.svc.Delete(ctx, anne.ID, a, v.Comment.ID+100)
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "comment.not_found", e.Key)

	require.NoError(t, f.svc.Delete(ctx, anne.ID, a, v.Comment.ID))
	assert.Zero(t, a.CommentsCount)

	views, err := f.svc.List(ctx, 0, a)
	require.NoError(t, err)
	assert.Empty(t, views)
}
