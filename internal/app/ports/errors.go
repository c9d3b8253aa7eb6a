package ports

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoGame   = errors.New("no game in progress")
)

type TransportErrorKind string

const (
	KindNetwork TransportErrorKind = "network"
	KindDecode  TransportErrorKind = "decode"
	KindRemote  TransportErrorKind = "remote"
)

// Sentinels for errors.Is against a *TransportError of the matching kind.
var (
	ErrNetwork = errors.New("network failure")
	ErrDecode  = errors.New("malformed payload")
	ErrRemote  = errors.New("rejected by remote")
)

type TransportError struct {
	Kind    TransportErrorKind
	Message string
	// Status is the HTTP status code when a response was received.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrRemote:
		return e.Kind == KindRemote
	}
	return false
}

func NetworkError(status int, message string, err error) *TransportError {
	return &TransportError{Kind: KindNetwork, Status: status, Message: message, Err: err}
}

func DecodeError(message string, err error) *TransportError {
	return &TransportError{Kind: KindDecode, Message: message, Err: err}
}

func RemoteError(status int, message string) *TransportError {
	return &TransportError{Kind: KindRemote, Status: status, Message: message}
}

// ErrorKind classifies err for logs and metrics. Anything that is not a
// transport error is reported as "local".
func ErrorKind(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return string(te.Kind)
	}
	return "local"
}
