package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a request failure. Validation, decode and empty-media
// failures are caller errors; everything else is an inference failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDecode     Kind = "decode"
	KindEmptyMedia Kind = "empty_media"
	KindInference  Kind = "inference"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Decodef(format string, args ...any) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf(format, args...)}
}

func DecodeWrap(message string, err error) *Error {
	return &Error{Kind: KindDecode, Message: message, Err: err}
}

func EmptyMedia(message string) *Error {
	return &Error{Kind: KindEmptyMedia, Message: message}
}

func Inference(err error) *Error {
	return &Error{Kind: KindInference, Message: "inference failed", Err: err}
}

// KindOf returns the kind of err, defaulting to KindInference for errors
// that did not originate in this module.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInference
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDecode, KindEmptyMedia:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the wire shape for every failure.
type ErrorResponse struct {
	Error string `json:"error" example:"Missing prompt or media"`
}

// RespondError is the single boundary adapter from the error taxonomy to an
// HTTP response. The raw message goes out as the payload.
func RespondError(c echo.Context, err error) error {
	return c.JSON(HTTPStatus(err), ErrorResponse{Error: err.Error()})
}
