package index

import (
	"errors"
	"fmt"
)

// APIError is an error response from the search engine itself: the engine
// answered, but with a non-2xx status it wants surfaced to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("index api error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError is a connectivity failure against the search engine:
// dial, TLS, timeout, or a response we never got. Always surfaced as 500.
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string {
	return "index transport error: " + e.Message
}

// AsAPIError reports whether err's chain contains an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// AsTransportError reports whether err's chain contains a TransportError.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
