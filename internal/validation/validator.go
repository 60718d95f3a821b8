// Package validation registers the custom binding rules on gin's validator
// and turns validation failures into per-field messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/models"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	colorPattern    = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

	registerOnce sync.Once
	registerErr  error
)

// NonFieldKey collects errors that do not belong to a single field.
const NonFieldKey = "non_field_errors"

// FieldErrors maps a JSON field name to its messages.
type FieldErrors map[string][]string

// Add appends a message to field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Register installs the custom tags on gin's default validator. It is safe to
// call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected binding validator engine")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidUsername(fl.Field().String())
		}); err != nil {
			registerErr = err
			return
		}
		if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		}); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("tagcolor", func(fl validator.FieldLevel) bool {
			return colorPattern.MatchString(fl.Field().String())
		})
	})
	return registerErr
}

// ValidUsername reports whether name is made of letters, digits and
// underscores and is not the reserved "me".
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name) && !strings.EqualFold(name, models.ReservedUsername)
}

// Translate converts a binding error into field messages. ok is false when err
// is not a validation or decoding error.
func Translate(err error) (FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := FieldErrors{}
		for _, fe := range verrs {
			out.Add(fieldPath(fe), message(fe))
		}
		return out, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = NonFieldKey
		}
		return FieldErrors{field: {fmt.Sprintf("expected %s", typeErr.Type.String())}}, true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return FieldErrors{NonFieldKey: {"malformed JSON body"}}, true
	}

	return nil, false
}

// fieldPath drops the top-level struct name, so RecipeRequest.ingredients[0].amount
// becomes ingredients[0].amount.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s items or characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s items or characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "unique":
		return "Duplicate values are not allowed."
	case "username":
		return fmt.Sprintf("Use letters, digits and underscores only; %q is reserved.", models.ReservedUsername)
	case "tagcolor":
		return "Enter a HEX color such as #49B64E or #FFF."
	case "slug":
		return "Use letters, digits, hyphens and underscores only."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
