package backend

import (
	"errors"
	"fmt"
)

// Configuration errors. These are returned before any network call is made.
var (
	ErrMissingHotel   = errors.New("hotel context is required")
	ErrMissingOrderID = errors.New("order id is required")
	ErrMissingToken   = errors.New("push token is required")
)

// TransportError covers connection failures, timeouts, non-2xx responses and
// bodies that are not JSON at all.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ContractError is a well-formed JSON response whose shape does not match
// the {status, data} envelope the operation expects.
type ContractError struct {
	Op     string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: unexpected response shape: %s", e.Op, e.Reason)
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrMissingHotel) || errors.Is(err, ErrMissingOrderID) || errors.Is(err, ErrMissingToken)
}

func IsContract(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
