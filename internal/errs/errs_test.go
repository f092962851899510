package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SergeyParamoshkin/blog/internal/errs"
)

func TestErrorIsComparesStatusAndKey(t *testing.T) {
	err := fmt.Errorf("favorite: %w", errs.Conflict("article.already_favorited", errs.Args{"slug": "a"}))

	assert.True(t, errors.Is(err, errs.Conflict("article.already_favorited", nil)))
	assert.False(t, errors.Is(err, errs.Conflict("article.not_favorited", nil)))
	assert.Equal(t, http.StatusConflict, errs.StatusOf(err))
}

func TestInvalidKeepsApplicationErrors(t *testing.T) {
	appErr := errs.BadRequest("user.missing_payload", nil)
	assert.Same(t, appErr, errs.Invalid(appErr))

	decodeErr := errs.Invalid(errors.New("unexpected EOF"))
	assert.Equal(t, "common.invalid_body", decodeErr.Key)
	assert.EqualError(t, decodeErr, "common.invalid_body: unexpected EOF")
}

func TestStatusOfUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, errs.StatusOf(errors.New("boom")))
}
