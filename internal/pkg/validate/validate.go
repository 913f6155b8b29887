package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom registrations must happen
// in init() before the first call to Struct.
var v = validator.New()

// FieldError names a field and the tag it failed.
type FieldError struct {
	Field string
	Tag   string
}

// Errors is returned by Struct when one or more fields fail validation.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field, fe.Tag))
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed tag.
func (e Errors) Has(field, tag string) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Tag == tag {
			return true
		}
	}
	return false
}

// Struct validates s using its validate tags. String length tags count runes.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}
