package validation_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/validation"
)

type signup struct {
	Username string   `json:"username" validate:"required,min=3,max=20"`
	Email    string   `json:"email" validate:"required,email"`
	Image    *string  `json:"image" validate:"omitempty,url"`
	Status   string   `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Tags     []string `json:"tagList" validate:"omitempty,dive,required,max=5"`
}

func (s *signup) Bind(r *http.Request) error {
	return validation.Struct(s)
}

func TestStructValid(t *testing.T) {
	img := "https://example.com/a.png"
	assert.NoError(t, validation.Struct(&signup{Username: "jake", Email: "jake@example.com", Image: &img}))
}

func TestStructCollectsFieldErrors(t *testing.T) {
	img := "not a url"
	err := validation.Struct(&signup{Username: "ab", Email: "nope", Image: &img, Status: "LIVE", Tags: []string{"go", "toolong"}})

	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "common.validation_failed", e.Key)

	got := map[string]errs.FieldError{}
	for _, f := range e.Fields {
		got[f.Field] = f
	}

	require.Len(t, got, 5)
	assert.Equal(t, "validation.min", got["username"].Key)
	assert.Equal(t, "3", got["username"].Args["param"])
	assert.Equal(t, "validation.email", got["email"].Key)
	assert.Equal(t, "validation.url", got["image"].Key)
	assert.Equal(t, "DRAFT, PUBLISHED", got["status"].Args["param"])
	assert.Equal(t, "validation.max", got["tagList[1]"].Key)
}

type batch struct {
	Slugs []string          `json:"articleSlugs" validate:"min=1,max=3"`
	Meta  map[string]string `json:"meta" validate:"omitempty,max=1"`
}

func TestStructCountsCollectionItems(t *testing.T) {
	err := validation.Struct(&batch{Slugs: []string{}, Meta: map[string]string{"a": "1", "b": "2"}})

	e, ok := errs.As(err)
	require.True(t, ok)

	got := map[string]errs.FieldError{}
	for _, f := range e.Fields {
		got[f.Field] = f
	}

	require.Len(t, got, 2)
	assert.Equal(t, "validation.min_items", got["articleSlugs"].Key)
	assert.Equal(t, "1", got["articleSlugs"].Args["param"])
	assert.Equal(t, "validation.max_items", got["meta"].Key)

	err = validation.Struct(&batch{Slugs: []string{"a", "b", "c", "d"}})
	e, ok = errs.As(err)
	require.True(t, ok)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "validation.max_items", e.Fields[0].Key)
}

func TestBindStrictRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"username":"jake","email":"j@x.io","admin":true}`))

	err := validation.BindStrict(r, &signup{})

	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, "common.invalid_body", e.Key)
}

func TestBindStrictRunsBind(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"username":"jake","email":"bad"}`))

	err := validation.BindStrict(r, &signup{})

	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, "common.validation_failed", e.Key)
}
