package entities

import "errors"

var (
	ErrInvalidDescriptor = errors.New("invalid query descriptor")
	ErrRateLimited       = errors.New("upstream rate limit exceeded")
	ErrUpstream          = errors.New("upstream request failed")
	ErrCancelled         = errors.New("request cancelled")
	ErrStorage           = errors.New("storage operation failed")
	ErrCoinNotFound      = errors.New("coin not found")
	ErrUnsupported       = errors.New("unsupported value")
)

// UserMessage turns a fetch failure into the text shown to consumers.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded. Please wait."
	case errors.Is(err, ErrCoinNotFound):
		return "Coin not found."
	default:
		return "Server error."
	}
}
