package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/blog/internal/errs"
)

const issuer = "blog"

var (
	ErrMissingToken = errs.Unauthorized("auth.missing_token", nil)
	ErrInvalidToken = errs.Unauthorized("auth.invalid_token", nil)
	ErrTokenExpired = errs.Unauthorized("auth.token_expired", nil)
)

// Claims identify the user a token was issued to.
type Claims struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(userID int64, email, username string) (string, error) {
	now := t.now()
	claims := Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the signature and expiry of raw.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}

		return t.secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired.Wrap(err)
		}

		return nil, ErrInvalidToken.Wrap(err)
	}

	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
