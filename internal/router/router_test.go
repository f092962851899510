package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/comment"
	"github.com/SergeyParamoshkin/blog/internal/i18n"
	"github.com/SergeyParamoshkin/blog/internal/testutil"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()

	db := testutil.NewDB(t)
	tokens := auth.NewTokens("0123456789abcdef0123", time.Hour)
	users := user.NewStore(db)

	h := New(Deps{
		Logger:   zap.NewNop().Sugar(),
		Bundle:   i18n.Default(),
		Tokens:   tokens,
		Users:    user.NewAPI(user.NewService(users, tokens)),
		Articles: article.NewAPI(article.NewService(article.NewStore(db), users, nil, nil)),
		Comments: comment.NewAPI(comment.NewService(comment.NewStore(db), users)),
	})

	return &client{t: t, h: h}
}

type response struct {
	Code int
	Body map[string]interface{}
}

func (c *client) do(method, path, token string, body interface{}, headers ...string) response {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	res := response{Code: w.Code}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &res.Body))
	}

	return res
}

func (c *client) register(username string) string {
	c.t.Helper()

	res := c.do(http.MethodPost, "/api/users", "", map[string]interface{}{
		"user": map[string]string{
			"username": username,
			"email":    username + "@example.com",
			"password": "secret1",
		},
	})
	require.Equal(c.t, http.StatusCreated, res.Code)

	return res.Body["user"].(map[string]interface{})["token"].(string)
}

func field(body map[string]interface{}, path ...string) interface{} {
	var v interface{} = body
	for _, p := range path {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[p]
	}

	return v
}

func TestPing(t *testing.T) {
	c := newClient(t)

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestUsers(t *testing.T) {
	c := newClient(t)
	token := c.register("jake")

	res := c.do(http.MethodPost, "/api/users/login", "", map[string]interface{}{
		"user": map[string]string{"email": "jake@example.com", "password": "secret1"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "jake", field(res.Body, "user", "username"))

	res = c.do(http.MethodPost, "/api/users/login", "", map[string]interface{}{
		"user": map[string]string{"email": "jake@example.com", "password": "nope"},
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = c.do(http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = c.do(http.MethodPut, "/api/user", token, map[string]interface{}{
		"user": map[string]string{"bio": "I like to skateboard"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "I like to skateboard", field(res.Body, "user", "bio"))

	res = c.do(http.MethodPut, "/api/user", token, map[string]interface{}{
		"user": map[string]string{"nickname": "jj"},
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = c.do(http.MethodPost, "/api/users", "", map[string]interface{}{
		"user": map[string]string{"username": "", "email": "bad", "password": "1"},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Len(t, res.Body["errors"], 3)
}

func TestRegisterShortUsername(t *testing.T) {
	c := newClient(t)
	token := c.register("jo")
	require.NotEmpty(t, token)

	res := c.do(http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "jo", field(res.Body, "user", "username"))

	// renaming still enforces the length rule
	res = c.do(http.MethodPut, "/api/user", token, map[string]interface{}{
		"user": map[string]string{"username": "j"},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"field": "username", "message": "username must be at least 3 characters long"},
	}, res.Body["errors"])
}

func TestProfiles(t *testing.T) {
	c := newClient(t)
	jake := c.register("jake")
	c.register("anne")

	res := c.do(http.MethodPost, "/api/profiles/anne/follow", jake, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, field(res.Body, "profile", "following"))

	res = c.do(http.MethodPost, "/api/profiles/anne/follow", jake, nil)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = c.do(http.MethodGet, "/api/profiles/anne", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, false, field(res.Body, "profile", "following"))

	res = c.do(http.MethodDelete, "/api/profiles/anne/follow", jake, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, false, field(res.Body, "profile", "following"))

	res = c.do(http.MethodGet, "/api/profiles/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestArticleLifecycle(t *testing.T) {
	c := newClient(t)
	jake := c.register("jake")
	anne := c.register("anne")

	res := c.do(http.MethodPost, "/api/articles", jake, map[string]interface{}{
		"article": map[string]interface{}{
			"title":       "How to train your dragon",
			"description": "Ever wonder how?",
			"body":        "You have to believe",
			"tagList":     []string{"dragons", "training"},
		},
	})
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "how-to-train-your-dragon", field(res.Body, "article", "slug"))
	assert.Equal(t, "DRAFT", field(res.Body, "article", "status"))
	assert.Equal(t, "jake", field(res.Body, "article", "author", "username"))

	path := "/api/articles/how-to-train-your-dragon"

	res = c.do(http.MethodGet, path, anne, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = c.do(http.MethodGet, "/api/articles/drafts", jake, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(1), res.Body["articlesCount"])

	res = c.do(http.MethodPatch, path+"/status", anne, map[string]string{"status": "PUBLISHED"})
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = c.do(http.MethodPatch, path+"/status", jake, map[string]string{"status": "PUBLISHED"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "PUBLISHED", field(res.Body, "article", "status"))
	assert.NotNil(t, field(res.Body, "article", "publishedAt"))

	res = c.do(http.MethodPut, path, anne, map[string]interface{}{"article": map[string]string{"body": "mine now"}})
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = c.do(http.MethodPost, path+"/favorite", anne, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, field(res.Body, "article", "favorited"))
	assert.Equal(t, float64(1), field(res.Body, "article", "favoritesCount"))

	res = c.do(http.MethodPost, path+"/favorite", anne, nil)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = c.do(http.MethodGet, "/api/articles?favorited=anne", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(1), res.Body["articlesCount"])

	res = c.do(http.MethodGet, "/api/articles?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = c.do(http.MethodPost, path+"/comments", anne, map[string]interface{}{"comment": map[string]string{"body": "Nice"}})
	require.Equal(t, http.StatusCreated, res.Code)
	id := field(res.Body, "comment", "id").(float64)

	res = c.do(http.MethodGet, path+"/comments", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Body["comments"], 1)

	res = c.do(http.MethodDelete, path+"/comments/abc", anne, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = c.do(http.MethodDelete, path+"/comments/"+strconv.FormatInt(int64(id), 10), jake, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = c.do(http.MethodDelete, path+"/comments/"+strconv.FormatInt(int64(id), 10), anne, nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = c.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(0), field(res.Body, "article", "commentsCount"))

	res = c.do(http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []interface{}{"dragons", "training"}, res.Body["tags"])

	res = c.do(http.MethodDelete, path, jake, nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = c.do(http.MethodGet, path, jake, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestPublishBatch(t *testing.T) {
	c := newClient(t)
	jake := c.register("jake")

	for _, title := range []string{"One", "Two"} {
		res := c.do(http.MethodPost, "/api/articles", jake, map[string]interface{}{
			"article": map[string]string{"title": title, "description": "d", "body": "b"},
		})
		require.Equal(t, http.StatusCreated, res.Code)
	}

	res := c.do(http.MethodPost, "/api/articles/publish", jake, map[string]interface{}{
		"articleSlugs": []string{"one", "missing"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []interface{}{"one"}, res.Body["published"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"slug": "missing", "reason": "not_found"},
	}, res.Body["skipped"])

	res = c.do(http.MethodPost, "/api/articles/publish", jake, map[string]interface{}{"articleSlugs": []string{}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"field": "articleSlugs", "message": "articleSlugs must contain at least 1 items"},
	}, res.Body["errors"])

	res = c.do(http.MethodGet, "/api/articles", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(1), res.Body["articlesCount"])

	res = c.do(http.MethodGet, "/api/articles/statistics", jake, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(2), res.Body["totalArticles"])
}

func TestLocalizedErrors(t *testing.T) {
	c := newClient(t)

	res := c.do(http.MethodGet, "/api/articles/missing?lang=vi", "", nil)
	require.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, `Không tìm thấy bài viết "missing"`, res.Body["message"])
	assert.Equal(t, float64(http.StatusNotFound), res.Body["statusCode"])
	assert.Equal(t, "/api/articles/missing", res.Body["path"])

	res = c.do(http.MethodGet, "/api/articles/missing", "", nil, "Accept-Language", "vi-VN,vi;q=0.9")
	assert.Equal(t, `Không tìm thấy bài viết "missing"`, res.Body["message"])

	res = c.do(http.MethodGet, "/api/articles/missing", "", nil, "X-Lang", "fr")
	assert.Equal(t, `Article "missing" not found`, res.Body["message"])

	res = c.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Resource not found", res.Body["message"])
}

func TestDiag(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewDiag(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	}), db)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "# metrics", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, true, status["healthy"])
}
