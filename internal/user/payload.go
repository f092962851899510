package user

import (
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/userpayload"
	"github.com/SergeyParamoshkin/blog/internal/validation"
)

var errMissingUser = errs.BadRequest("user.missing_payload", nil)

type RegisterRequest struct {
	User *RegisterUser `json:"user"`
}

type RegisterUser struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (p *RegisterRequest) Bind(r *http.Request) error {
	if p.User == nil {
		return errMissingUser
	}

	return validation.Struct(p.User)
}

type LoginRequest struct {
	User *LoginUser `json:"user"`
}

type LoginUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p *LoginRequest) Bind(r *http.Request) error {
	if p.User == nil {
		return errMissingUser
	}

	return validation.Struct(p.User)
}

// UpdateRequest is decoded strictly, unknown fields are rejected.
type UpdateRequest struct {
	User *UpdateUser `json:"user"`
}

type UpdateUser struct {
	Email           *string `json:"email" validate:"omitempty,email"`
	Username        *string `json:"username" validate:"omitempty,min=3,max=20"`
	Password        *string `json:"password" validate:"omitempty,min=6"`
	ConfirmPassword *string `json:"confirmPassword"`
	Image           *string `json:"image" validate:"omitempty,url"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
}

func (p *UpdateRequest) Bind(r *http.Request) error {
	if p.User == nil {
		return errMissingUser
	}

	return validation.Struct(p.User)
}

func (p *UpdateRequest) Changes() Changes {
	return Changes{
		Email:           p.User.Email,
		Username:        p.User.Username,
		Password:        p.User.Password,
		ConfirmPassword: p.User.ConfirmPassword,
		Image:           p.User.Image,
		Bio:             p.User.Bio,
	}
}

type UserResponse struct {
	User *userpayload.UserPayload `json:"user"`
}

func NewUserResponse(s *Session) *UserResponse {
	return &UserResponse{User: userpayload.NewUserPayload(s.User, s.Token)}
}

func (rd *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ProfileResponse struct {
	Profile *userpayload.ProfilePayload `json:"profile"`
}

func NewProfileResponse(p *Profile) *ProfileResponse {
	return &ProfileResponse{Profile: userpayload.NewProfilePayload(p.User, p.Following)}
}

func (rd *ProfileResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
