package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Problem is the RFC 7807 body the API returns on failures.
type Problem struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Status  int    `json:"status,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// APIError is the normalized form of every failed request, whether it never
// reached the API (Err set) or came back with a 4xx/5xx status.
type APIError struct {
	Method     string
	Path       string
	Status     int
	Title      string
	Detail     string
	MessageKey string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.Path, e.Err)
	}

	msg := fmt.Sprintf("request failed with status code %d", e.Status)

	var parts []string
	if e.Title != "" {
		parts = append(parts, e.Title)
	}
	if e.Detail != "" && e.Detail != e.Title {
		parts = append(parts, e.Detail)
	}
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, ": ")
	}
	if e.MessageKey != "" {
		msg += " (" + e.MessageKey + ")"
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (c *Client) newAPIError(req Request, resp *resty.Response) *APIError {
	apiErr := &APIError{
		Method: req.Method,
		Path:   req.Path,
		Status: resp.StatusCode(),
	}

	if p, ok := resp.Error().(*Problem); ok && p != nil {
		apiErr.Title = p.Title
		apiErr.Detail = p.Detail
		apiErr.MessageKey = p.Message
	}
	if apiErr.MessageKey == "" && c.appName != "" {
		apiErr.MessageKey = resp.Header().Get("X-" + c.appName + "-error")
	}
	if apiErr.Title == "" {
		apiErr.Title = http.StatusText(apiErr.Status)
	}

	return apiErr
}

func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
