// AngelaMos | 2026
// feedback.go

// Package forms holds the client-side state of every editable form along
// with the validation each runs before its single submit call.
package forms

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/debt-manager/internal/client"
	"github.com/carterperez-dev/debt-manager/internal/core"
)

const (
	MsgGeneric      = "Something went wrong, please try again"
	MsgAccessDenied = "Access denied: you do not have permission to do this"
	MsgSignInAgain  = "Your session has expired, please sign in again"
	MsgRequestFail  = "The request could not be completed"
)

var validate = core.NewValidator()

// ValidationError blocks a submit before any request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return core.ErrInvalidInput
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func checkStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return invalid(core.FormatValidationError(err))
		}
		return err
	}
	return nil
}

// Feedback turns any submit error into the inline message shown under the
// form.
func Feedback(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind() {
		case client.KindForbidden:
			return MsgAccessDenied
		case client.KindUnauthorized:
			return MsgSignInAgain
		case client.KindServer:
			return MsgGeneric
		}
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return MsgRequestFail
	}

	if errors.Is(err, core.ErrInvalidInput) {
		return err.Error()
	}

	return MsgGeneric
}
