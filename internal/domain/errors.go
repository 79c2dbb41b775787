package domain

import (
	"errors"
	"fmt"
)

// Kind classifies controller errors so transport layers can map them to
// status codes without inspecting messages.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindService    Kind = "SERVICE"
)

// Error is the single error shape the session core returns. Every failure is
// local and recoverable; callers retry by re-issuing the corresponding event.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a malformed event payload or an event fired outside its
// legal state. The session is left unchanged.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a reference to a nonexistent entity (e.g. chat id).
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// ServiceFailure wraps a failed external call. The session reverts to its
// pre-call state; the notice is user-visible and retryable.
func ServiceFailure(msg string, err error) *Error {
	return &Error{Kind: KindService, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, or KindService for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindService
}
