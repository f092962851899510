package userpayload

import (
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// UserPayload is the authenticated user together with a fresh token.
type UserPayload struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

func NewUserPayload(u *model.User, token string) *UserPayload {
	return &UserPayload{
		ID:       u.ID,
		Email:    u.Email,
		Token:    token,
		Username: u.Username,
		Bio:      u.Bio,
		Image:    u.Image,
	}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ProfilePayload is the public view of a user as seen by the viewer.
type ProfilePayload struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

func NewProfilePayload(u *model.User, following bool) *ProfilePayload {
	if u == nil {
		return nil
	}

	return &ProfilePayload{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: following,
	}
}

func (p *ProfilePayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
