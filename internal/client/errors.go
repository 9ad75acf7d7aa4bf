package client

import "errors"

// Kind classifies a store failure for the presentation layer.
type Kind string

const (
	KindNetwork    Kind = "network"    // request could not complete
	KindValidation Kind = "validation" // store rejected the supplied data
	KindNotFound   Kind = "not_found"  // mutation target no longer exists
	KindAuth       Kind = "auth"       // 401, session has been cleared
	KindInternal   Kind = "internal"   // store-side failure
)

// FallbackMessage is surfaced when the store provides no message of
// its own.
const FallbackMessage = "something went wrong, please try again"

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + FallbackMessage
}

func (e *Error) Unwrap() error { return e.cause }

// UserMessage is what should be shown in a notification.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return FallbackMessage
}

// IsKind reports whether err is a store failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
