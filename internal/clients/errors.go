package clients

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork means the API could not be reached or answered with
	// something that is not an envelope.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized matches API errors with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	ErrTooManyImages = fmt.Errorf("at most %d images per upload", MaxUploadImages)
)

// APIError is an application failure reported by the API in a
// success:false envelope.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" && e.Detail != msg {
		return fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// UserMessage is the single line shown to a user for err.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	case errors.Is(err, ErrNetwork):
		return "Network error"
	}
	return err.Error()
}
