package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/SergeyParamoshkin/blog/internal/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

var messageKeys = map[string]string{
	"required": "validation.required",
	"email":    "validation.email",
	"min":      "validation.min",
	"max":      "validation.max",
	"url":      "validation.url",
	"oneof":    "validation.oneof",
	"gte":      "validation.gte",
	"lte":      "validation.lte",
}

// Struct validates s and returns an *errs.Error listing every invalid field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Invalid(err)
	}

	fields := make([]errs.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		key := messageKey(fe)

		param := fe.Param()
		if fe.Tag() == "oneof" {
			param = strings.ReplaceAll(param, " ", ", ")
		}

		fields = append(fields, errs.FieldError{
			Field: fieldPath(fe),
			Key:   key,
			Args:  errs.Args{"param": param},
		})
	}

	return errs.Validation(fields)
}

func messageKey(fe validator.FieldError) string {
	key, ok := messageKeys[fe.Tag()]
	if !ok {
		return "validation.invalid"
	}

	// min and max count elements on collections, not characters
	switch fe.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if fe.Tag() == "min" || fe.Tag() == "max" {
			key += "_items"
		}
	}

	return key
}

// fieldPath drops the top level struct name from the namespace, so
// "RegisterUser.email" becomes "email" and "Article.tagList[0]" becomes
// "tagList[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

// BindStrict decodes the JSON body into v rejecting unknown fields, then runs
// v's Bind.
func BindStrict(r *http.Request, v render.Binder) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errs.Invalid(err)
	}

	return v.Bind(r)
}
