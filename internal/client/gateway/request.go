package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/unicampus-app/unicampus/internal/common"
)

// Request describes one outbound API call. Path is joined to the gateway's
// base URL; Body, when non-nil, is marshalled as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response is the raw result of a successful (2xx) API call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// APIError is a classified backend failure. It unwraps to one of the
// sentinel errors in the common package, so callers match with errors.Is
// and show Message to the user.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// classifyStatus maps an HTTP status code onto the error taxonomy.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return common.ErrUnauthorized
	case status == http.StatusForbidden:
		return common.ErrForbidden
	case status == http.StatusNotFound:
		return common.ErrNotFound
	case status >= 500:
		return common.ErrServerError
	default:
		return common.ErrBadRequest
	}
}

// messageFrom extracts a human-readable message from an error body.
// The backend sends {"message": "..."}; some endpoints use {"error": "..."}.
func messageFrom(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
