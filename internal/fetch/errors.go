package fetch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var (
	// ErrEmptyURL is returned when a request has no URL.
	ErrEmptyURL = errors.New("fetch: empty url")

	// ErrInvalidJSON is returned when a successful response body is not JSON.
	ErrInvalidJSON = errors.New("fetch: invalid json body")
)

// APIError is a non-2xx HTTP response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Message)
}

// StatusCode extracts the HTTP status from an *APIError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}

// newAPIError builds the error message from the body: the JSON "message"
// field, else the compact JSON body, else raw text, else the status text.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: errorDetail(status, body)}
}

func errorDetail(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if text := http.StatusText(status); text != "" {
			return text
		}
		return strconv.Itoa(status)
	}

	if json.Valid(trimmed) {
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			if msg, ok := obj["message"]; ok && msg != nil {
				if s, ok := msg.(string); ok {
					return s
				}
				return fmt.Sprint(msg)
			}
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			return compact.String()
		}
	}

	return string(trimmed)
}
