package assessment

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// FallbackFailedMessage is used when a Failed job carries no error text.
	FallbackFailedMessage = "Assessment failed."
	// FallbackTransportMessage is used when a transport error has no usable text.
	FallbackTransportMessage = "An unexpected error occurred."
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrNotComplete = errors.New("job not complete")
)

// TransportError is returned by a Transport for network failures and for any
// response status outside the expected set.
type TransportError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Detail != "" && e.StatusCode != 0:
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Detail)
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream status %d", e.StatusCode)
	}
	return FallbackTransportMessage
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message is the user-visible text: server detail, then raw transport text,
// then the generic fallback.
func (e *TransportError) Message() string {
	if d := strings.TrimSpace(e.Detail); d != "" {
		return d
	}
	if e.Err != nil {
		if s := strings.TrimSpace(e.Err.Error()); s != "" {
			return s
		}
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
	}
	return FallbackTransportMessage
}

// FailureMessage extracts a display message from any error returned by a
// Transport, following the same priority as TransportError.Message.
func FailureMessage(err error) string {
	if err == nil {
		return FallbackTransportMessage
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Message()
	}
	if s := strings.TrimSpace(err.Error()); s != "" {
		return s
	}
	return FallbackTransportMessage
}

// FailedResultMessage returns result.error, or the generic fallback.
func FailedResultMessage(p *Payload) string {
	if p != nil {
		if s := strings.TrimSpace(p.Error); s != "" {
			return s
		}
	}
	return FallbackFailedMessage
}
