package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the client's error taxonomy. Every fetch failure
// wraps exactly one of these (or is a *ServerError); callers never receive
// partially decoded data.
var (
	ErrInvalidURL      = errors.New("catalog: invalid url")
	ErrNetwork         = errors.New("catalog: network failure")
	ErrInvalidResponse = errors.New("catalog: invalid response")
	ErrDecoding        = errors.New("catalog: decoding failure")
	ErrNoData          = errors.New("catalog: no data received")
)

// ServerError reports a non-2xx HTTP status from the catalog API.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("catalog: server error (status %d)", e.StatusCode)
}

// AsServerError unwraps err into a *ServerError if possible.
func AsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
