package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	InvalidInput           Code = "INVALID_INPUT"
	TranscriptNotAvailable Code = "TRANSCRIPT_NOT_AVAILABLE"
	RateLimited            Code = "RATE_LIMITED"
	OpenAIError            Code = "OPENAI_ERROR"
	InternalError          Code = "INTERNAL_ERROR"
)

// Status is the HTTP status the API layer answers with for the code.
func (c Code) Status() int {
	switch c {
	case InvalidInput, TranscriptNotAvailable:
		return http.StatusBadRequest
	case RateLimited:
		return http.StatusTooManyRequests
	case OpenAIError, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

const (
	MsgTranscriptNotAvailable = "This video doesn't have an accessible transcript. Try another video."
	MsgRateLimited            = "Daily limit reached. Try again tomorrow."
	MsgInternal               = "An unexpected error occurred. Please try again."
)

// Error is the only error shape that leaves the pipeline. Message is safe to
// show to the caller; Err carries the underlying cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	// the cause is omitted when Message already quotes it
	if e.Err != nil && !strings.Contains(e.Message, e.Err.Error()) {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	return e.Code.Status()
}

func New(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// From returns the *Error found in err's chain, or wraps err as INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(InternalError, MsgInternal, err)
}
