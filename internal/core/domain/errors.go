package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrSubmissionInFlight = errors.New("submission already in flight")
var ErrEmptyCode = errors.New("code must not be empty")

// ValidationError is malformed input caught before any network call is
// issued. Err, when set, carries the sentinel cause (such as ErrEmptyCode)
// for errors.Is checks.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return e.Err }

// RuleError is a server-side decline for domain reasons (code already used,
// expired, self-referral). The message is surfaced verbatim and the local
// mirrors are guaranteed unchanged.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string { return e.Msg }

// TransportError is a network failure or a 5xx response. Callers surface a
// generic retryable message; the operation is never retried automatically.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
