// Package client is a small Go client for the blog API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Client struct {
	http.Client
	Addr  string
	Token string
}

type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

type Article struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Body           string   `json:"body"`
	TagList        []string `json:"tagList"`
	Status         string   `json:"status,omitempty"`
	Favorited      bool     `json:"favorited"`
	FavoritesCount int      `json:"favoritesCount"`
	CommentsCount  int      `json:"commentsCount"`
}

// Error is a non 2xx answer of the API.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("blog api: %d %s", e.StatusCode, e.Message)
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// Register creates an account and keeps its token for later calls.
func (c *Client) Register(username, email, password string) (*User, error) {
	return c.authenticate("/api/users", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// Login keeps the token of the logged in user for later calls.
func (c *Client) Login(email, password string) (*User, error) {
	return c.authenticate("/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(path string, user map[string]string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.call(http.MethodPost, path, map[string]interface{}{"user": user}, &out); err != nil {
		return nil, err
	}

	c.Token = out.User.Token

	return out.User, nil
}

func (c *Client) CreateArticle(a *Article) (*Article, error) {
	var out struct {
		Article *Article `json:"article"`
	}
	if err := c.call(http.MethodPost, "/api/articles", map[string]interface{}{"article": a}, &out); err != nil {
		return nil, err
	}

	return out.Article, nil
}

func (c *Client) Article(slug string) (*Article, error) {
	var out struct {
		Article *Article `json:"article"`
	}
	if err := c.call(http.MethodGet, "/api/articles/"+slug, nil, &out); err != nil {
		return nil, err
	}

	return out.Article, nil
}

func (c *Client) call(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.Addr+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Token "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)

		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
