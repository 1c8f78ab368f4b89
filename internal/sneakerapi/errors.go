package sneakerapi

import (
	"fmt"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
)

// ValidationError is returned for submissions rejected before or by the
// service, such as a missing identity or a quantity below 1.
type ValidationError = prediction.ValidationError

// NetworkError is a transport failure or a non-2xx answer from the service.
type NetworkError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Message    string // the service's "error" field, if it sent one
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: service returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
