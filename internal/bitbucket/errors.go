package bitbucket

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrRequestFailed matches any non-2xx response.
	ErrRequestFailed = errors.New("bitbucket API request failed")
	// ErrDecodeFailed matches any response body that could not be decoded.
	ErrDecodeFailed = errors.New("failed to decode bitbucket API response")
)

// RequestError is returned when the API answers with a non-2xx status.
type RequestError struct {
	Body   string
	Method string
	Status int
	URL    string
}

func (e *RequestError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s (%d %s): %s %s", ErrRequestFailed, e.Status, http.StatusText(e.Status), e.Method, e.URL)
	}
	return fmt.Sprintf("%s (%d %s): %s", ErrRequestFailed, e.Status, http.StatusText(e.Status), body)
}

func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.Status == http.StatusUnauthorized || reqErr.Status == http.StatusForbidden
}

// DecodeError is returned when a 2xx response body is not the expected JSON.
type DecodeError struct {
	Err error
	URL string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s from %s: %v", ErrDecodeFailed, e.URL, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecodeFailed, e.Err}
}
