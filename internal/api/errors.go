package api

import (
	"errors"
	"fmt"
)

// ErrNoMoreQuestions is returned by the question supplier when the backend
// answers 404 on the next-question endpoint: the section is exhausted. It is
// an expected terminal state, not a failure.
var ErrNoMoreQuestions = errors.New("no more questions available for this section")

// FieldError is one field-level validation failure from a 400 response.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Action is a server-suggested follow-up attached to an error, e.g. a
// retry delay on 429.
type Action struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Error is the backend's error envelope. Every non-2xx response is surfaced
// as one of these; when the body does not parse as the envelope, a synthetic
// Error carrying just the status is returned instead.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
	Action  *Action      `json:"action,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("request failed (%d %s)", e.Status, e.Code)
}

// FieldErrors flattens the envelope's field errors into a field → message
// map for form display. Nil when there are none.
func (e *Error) FieldErrors() map[string]string {
	if len(e.Errors) == 0 {
		return nil
	}
	m := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		m[fe.Field] = fe.Error
	}
	return m
}

// StatusOf extracts the HTTP status from an error chain. Returns 0 for
// transport-level failures that never produced a response.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 that survived the client's
// single token-refresh retry.
func IsUnauthorized(err error) bool { return StatusOf(err) == 401 }

// IsForbidden reports whether err is a 403.
func IsForbidden(err error) bool { return StatusOf(err) == 403 }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return StatusOf(err) == 404 }

// IsValidation reports whether err is a 400.
func IsValidation(err error) bool { return StatusOf(err) == 400 }

// UserMessage maps an error to the string shown to the user, following the
// client-wide taxonomy: validation and 403/404 use the server message,
// 429 includes the suggested retry delay, 5xx and transport failures get a
// generic retry prompt.
func UserMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return "Network error. Check your connection and try again."
	}

	switch {
	case apiErr.Status == 400, apiErr.Status == 403, apiErr.Status == 404:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Request failed."
	case apiErr.Status == 401:
		return "Please sign in to continue."
	case apiErr.Status == 429:
		if apiErr.Action != nil && apiErr.Action.Value != "" {
			return fmt.Sprintf("Too many requests. Please try again in %s seconds.", apiErr.Action.Value)
		}
		return "Too many requests. Please try again later."
	case apiErr.Status >= 500:
		return "Something went wrong. Please try again later."
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "An unexpected error occurred."
	}
}
