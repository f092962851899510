//go:build integration

package client

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var c = Client{
	Addr:   "http://localhost:3333",
	Client: http.Client{},
}

func TestPing(t *testing.T) {
	s, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "pong", s)
}

func TestPublishedArticle(t *testing.T) {
	name := fmt.Sprintf("it%d", time.Now().UnixNano()%1e9)

	_, err := c.Register(name, name+"@example.com", "secret1")
	require.NoError(t, err)

	a, err := c.CreateArticle(&Article{
		Title:       "Integration " + name,
		Description: "d",
		Body:        "b",
		Status:      "PUBLISHED",
	})
	require.NoError(t, err)

	anon := Client{Addr: c.Addr}
	got, err := anon.Article(a.Slug)
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
}
