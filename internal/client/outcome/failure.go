package outcome

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a Failure.
type Kind string

const (
	TransportFailure      Kind = "TransportFailure"
	AuthenticationFailure Kind = "AuthenticationFailure"
	RefreshFailure        Kind = "RefreshFailure"
	ServerFailure         Kind = "ServerFailure"
	ValidationFailure     Kind = "ValidationFailure"
)

// Sentinels matching failures of the corresponding kind with errors.Is.
var (
	ErrTransport      = errors.New("transport failure")
	ErrAuthentication = errors.New("authentication failure")
	ErrRefresh        = errors.New("refresh failure")
	ErrServer         = errors.New("server failure")
	ErrValidation     = errors.New("validation failure")
)

var kindSentinels = map[Kind]error{
	TransportFailure:      ErrTransport,
	AuthenticationFailure: ErrAuthentication,
	RefreshFailure:        ErrRefresh,
	ServerFailure:         ErrServer,
	ValidationFailure:     ErrValidation,
}

// Failure is the failure branch of an Outcome. Status is zero when no
// response was received. Err keeps the underlying cause, if any.
type Failure struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

// NewFailure builds a Failure without status or cause.
func NewFailure(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Failure of kind around err, using err's text as message.
func Wrap(kind Kind, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		if f.Kind == kind {
			return f
		}
		return &Failure{Kind: kind, Message: f.Message, Status: f.Status, Err: err}
	}
	return &Failure{Kind: kind, Message: err.Error(), Err: err}
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports kind equality against the package sentinels, so that
// errors.Is(err, outcome.ErrRefresh) works through wrapping.
func (f *Failure) Is(target error) bool {
	return kindSentinels[f.Kind] == target
}

// KindOf returns the Kind of the first Failure in err's chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// KindForStatus maps a non-2xx HTTP status to a Kind.
func KindForStatus(status int) Kind {
	if status == http.StatusUnauthorized {
		return AuthenticationFailure
	}
	return ServerFailure
}
