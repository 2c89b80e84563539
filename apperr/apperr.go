// Package apperr holds the error kinds every launcher component reports.
// Components wrap these sentinels with fmt.Errorf("%w: ...") and callers
// match them with errors.Is.
package apperr

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network error")
)

// NetworkMessage is shown to the user in place of transport details.
const NetworkMessage = "could not reach the remote service, check your connection"

// UserMessage renders err for display. Network failures collapse into a
// generic message; everything else is already phrased for the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNetwork) {
		return NetworkMessage
	}
	return err.Error()
}

// Kind names the category of err, or "internal" when it carries none.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "internal"
	}
}
