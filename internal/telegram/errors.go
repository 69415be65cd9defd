package telegram

import (
	"fmt"
	"net/http"

	"github.com/bcup/bcup/internal/errors"
)

// ErrTooLarge is returned by Send for archives above the upload limit.
var ErrTooLarge = errors.New("archive exceeds the Bot API upload limit")

// apiError is returned whenever the Bot API rejects a request.
type apiError struct {
	Method      string
	StatusCode  int
	Description string
	RetryAfter  int
}

func (e *apiError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%v: unexpected HTTP response (%v)", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("%v: %v (%v)", e.Method, e.Description, e.StatusCode)
}

// isPermanent reports whether retrying err cannot help. Client errors are
// permanent, except for flood control.
func isPermanent(err error) bool {
	if errors.Is(err, ErrTooLarge) {
		return true
	}

	var aerr *apiError
	if errors.As(err, &aerr) {
		return aerr.StatusCode >= 400 && aerr.StatusCode < 500 &&
			aerr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// IsUnauthorized reports whether err was caused by an invalid bot token.
func IsUnauthorized(err error) bool {
	var aerr *apiError
	return errors.As(err, &aerr) && aerr.StatusCode == http.StatusUnauthorized
}
