package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

var (
	ErrInvalidCredential = errs.Unauthorized("user.invalid_credential", nil)
	ErrUserGone          = errs.Unauthorized("auth.user_not_found", nil)
	ErrAlreadyExists     = errs.Conflict("user.already_exists", nil)
	ErrPasswordPair      = errs.BadRequest("user.password_confirmation_required", nil)
	ErrPasswordMismatch  = errs.BadRequest("user.password_mismatch", nil)
	ErrFollowSelf        = errs.Conflict("profile.cannot_follow_self", nil)
	ErrUnfollowSelf      = errs.Conflict("profile.cannot_unfollow_self", nil)
)

type Service struct {
	store  *Store
	tokens *auth.Tokens
}

func NewService(store *Store, tokens *auth.Tokens) *Service {
	return &Service{store: store, tokens: tokens}
}

// Session is a user with a freshly issued token.
type Session struct {
	User  *model.User
	Token string
}

// Profile is a user as seen by a viewer.
type Profile struct {
	User      *model.User
	Following bool
}

type Registration struct {
	Username string
	Email    string
	Password string
}

// Changes lists the account fields to update, nil means unchanged.
type Changes struct {
	Email           *string
	Username        *string
	Password        *string
	ConfirmPassword *string
	Image           *string
	Bio             *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in Registration) (*Session, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	if err := s.checkAvailable(ctx, email, username, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Email: email, Username: username, Password: hash}
	if err := s.store.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrAlreadyExists.Wrap(err)
		}

		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.session(u)
}

func (s *Service) checkAvailable(ctx context.Context, email, username string, exceptID int64) error {
	if email != "" {
		taken, err := s.store.Taken(ctx, "email", email, exceptID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return errs.Conflict("user.email_taken", errs.Args{"email": email})
		}
	}

	if username != "" {
		taken, err := s.store.Taken(ctx, "username", username, exceptID)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return errs.Conflict("user.username_taken", errs.Args{"username": username})
		}
	}

	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.ByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrInvalidCredential
		}

		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredential
	}

	return s.session(u)
}

// Current returns the session of the authenticated user.
func (s *Service) Current(ctx context.Context, userID int64) (*Session, error) {
	u, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.session(u)
}

func (s *Service) current(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.store.ByID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserGone
		}

		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}

	return u, nil
}

func (s *Service) Update(ctx context.Context, userID int64, in Changes) (*Session, error) {
	if (in.Password == nil) != (in.ConfirmPassword == nil) {
		return nil, ErrPasswordPair
	}
	if in.Password != nil && *in.Password != *in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	u, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		columns  []string
		email    string
		username string
	)

	if in.Email != nil && normalizeEmail(*in.Email) != u.Email {
		email = normalizeEmail(*in.Email)
		u.Email = email
		columns = append(columns, "email")
	}
	if in.Username != nil && strings.TrimSpace(*in.Username) != u.Username {
		username = strings.TrimSpace(*in.Username)
		u.Username = username
		columns = append(columns, "username")
	}
	if err := s.checkAvailable(ctx, email, username, u.ID); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
		columns = append(columns, "password")
	}
	if in.Image != nil {
		u.Image = emptyToNil(*in.Image)
		columns = append(columns, "image")
	}
	if in.Bio != nil {
		u.Bio = emptyToNil(*in.Bio)
		columns = append(columns, "bio")
	}

	if len(columns) > 0 {
		if err := s.store.Update(ctx, u, columns...); err != nil {
			if database.IsDuplicateKey(err) {
				return nil, ErrAlreadyExists.Wrap(err)
			}

			return nil, fmt.Errorf("update user %d: %w", u.ID, err)
		}
	}

	return s.session(u)
}

func emptyToNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return &s
}

func (s *Service) session(u *model.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Email, u.Username)
	if err != nil {
		return nil, err
	}

	return &Session{User: u, Token: token}, nil
}

func (s *Service) profileUser(ctx context.Context, username string) (*model.User, error) {
	u, err := s.store.ByUsername(ctx, username)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("profile.not_found", errs.Args{"username": username})
		}

		return nil, fmt.Errorf("find profile %s: %w", username, err)
	}

	return u, nil
}

// Profile returns username's profile, viewerID may be 0.
func (s *Service) Profile(ctx context.Context, viewerID int64, username string) (*Profile, error) {
	u, err := s.profileUser(ctx, username)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 && viewerID != u.ID {
		if following, err = s.store.IsFollowing(ctx, viewerID, u.ID); err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}

	return &Profile{User: u, Following: following}, nil
}

func (s *Service) Follow(ctx context.Context, viewerID int64, username string) (*Profile, error) {
	u, err := s.profileUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.ID == viewerID {
		return nil, ErrFollowSelf
	}

	following, err := s.store.IsFollowing(ctx, viewerID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	alreadyFollowing := errs.Conflict("profile.already_following", errs.Args{"username": u.Username})
	if following {
		return nil, alreadyFollowing
	}

	if err := s.store.Follow(ctx, viewerID, u.ID); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, alreadyFollowing.Wrap(err)
		}

		return nil, fmt.Errorf("follow %s: %w", username, err)
	}

	return &Profile{User: u, Following: true}, nil
}

func (s *Service) Unfollow(ctx context.Context, viewerID int64, username string) (*Profile, error) {
	u, err := s.profileUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.ID == viewerID {
		return nil, ErrUnfollowSelf
	}

	removed, err := s.store.Unfollow(ctx, viewerID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("unfollow %s: %w", username, err)
	}
	if !removed {
		return nil, errs.Conflict("profile.not_following", errs.Args{"username": u.Username})
	}

	return &Profile{User: u, Following: false}, nil
}
