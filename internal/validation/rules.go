// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

// authorizationTokenSize is the number of random bytes behind an authorization token.
const authorizationTokenSize = 32

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// UUID validates that a string is a canonical UUID.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// AuthorizationToken validates the shape of a plain authorization token:
// base64url text decoding to 32 bytes.
var AuthorizationToken = validation.NewStringRuleWithError(
	func(s string) bool {
		b, err := base64.URLEncoding.DecodeString(s)
		return err == nil && len(b) == authorizationTokenSize
	},
	validation.NewError("validation_authorization_token", "must be a valid authorization token"),
)

// RuneLength validates the length of a string in characters rather than bytes.
// Nil pointers are valid; combine with validation.Required or validation.NotNil.
func RuneLength(min, max int) validation.Rule {
	return validation.By(func(value interface{}) error {
		value, isNil := validation.Indirect(value)
		if isNil || value == nil {
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_rune_length_type", "must be a string")
		}
		n := utf8.RuneCountInString(s)
		if n < min || n > max {
			return validation.NewError("validation_rune_length", "the length must be between {{.min}} and {{.max}}").
				SetParams(map[string]interface{}{"min": min, "max": max})
		}
		return nil
	})
}
