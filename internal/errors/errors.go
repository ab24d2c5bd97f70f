// Package errors defines the closed set of failure kinds the chat pipeline can produce.
// Callers branch on Kind instead of parsing message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies the pipeline stage that failed
type Kind string

const (
	KindNLU             Kind = "NLU"
	KindIncompleteSlots Kind = "INCOMPLETE_SLOTS"
	KindGeocode         Kind = "GEOCODE"
	KindValidation      Kind = "VALIDATION"
	KindSearch          Kind = "SEARCH"
)

// AppError represents a structured pipeline error
type AppError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"status_code,omitempty"` // upstream status, 0 when unknown
	Raw        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError
func New(kind Kind, message, detail string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Detail:  detail,
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, kind Kind, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind:    kind,
		Message: message,
		Detail:  err.Error(),
		Raw:     err,
	}
}

// Helper functions for each kind

// NLU reports a failed extraction call or an unusable model response
func NLU(err error) *AppError {
	if err == nil {
		return New(KindNLU, "could not extract search parameters", "")
	}
	return Wrap(err, KindNLU, "could not extract search parameters")
}

// Incomplete carries the clarification question for the user
func Incomplete(question string) *AppError {
	return New(KindIncompleteSlots, question, "")
}

func Geocode(message string, err error) *AppError {
	e := New(KindGeocode, message, "")
	if err != nil {
		e.Detail = err.Error()
		e.Raw = err
	}
	return e
}

func GeocodeStatus(status int) *AppError {
	return &AppError{
		Kind:       KindGeocode,
		Message:    fmt.Sprintf("geocoder returned status %d", status),
		StatusCode: status,
	}
}

func Validation(message string) *AppError {
	return New(KindValidation, message, "")
}

// Search reports a failed offers lookup; status is the upstream HTTP status or 0
func Search(status int, err error) *AppError {
	msg := "hotel API error"
	if status > 0 {
		msg = fmt.Sprintf("hotel API error [%d]", status)
	}
	e := New(KindSearch, msg, "")
	e.StatusCode = status
	if err != nil {
		e.Detail = err.Error()
		e.Raw = err
	}
	return e
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err carries none
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}

// StatusOf returns the upstream status code carried by err, or 0
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return 0
}

// Is reports whether err is an AppError of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
