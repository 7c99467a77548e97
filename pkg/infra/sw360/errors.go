package sw360

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Sentinel errors for errors.Is checks
var (
	// ErrMissingID is returned when an operation requiring a release id gets an empty one
	ErrMissingID = errors.New("no release id provided")
	// ErrNotFound matches a 404 response
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized matches a 401 or 403 response
	ErrUnauthorized = errors.New("not authorized")
)

// Error is returned by every operation of this package
type Error struct {
	// Message is a human readable summary. Empty for plain negative responses.
	Message string
	// URL is the request URL. Empty for precondition failures.
	URL string
	// Response is the failed response. Its body has already been consumed
	// into Body.
	Response *http.Response
	// Body is the raw response body
	Body []byte
	// Details is the response body parsed as a JSON object, nil if it is not one
	Details map[string]any

	cause error
}

// NewError builds an Error from a failed response. resp may be nil. The
// response body is read and closed; a body that is not a JSON object leaves
// Details nil.
func NewError(resp *http.Response, url, message string) *Error {
	e := &Error{
		Message:  message,
		URL:      url,
		Response: resp,
	}

	if resp != nil && resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err == nil {
			e.setBody(body)
		}
	}

	return e
}

func (e *Error) setBody(body []byte) {
	e.Body = body
	var details map[string]any
	if err := json.Unmarshal(body, &details); err == nil {
		e.Details = details
	}
}

func newResponseError(resp *http.Response, body []byte, url string) *Error {
	e := &Error{URL: url, Response: resp}
	e.setBody(body)
	return e
}

func wrapError(cause error, url, message string) *Error {
	return &Error{Message: message, URL: url, cause: cause}
}

func missingIDError() *Error {
	return &Error{Message: ErrMissingID.Error(), cause: ErrMissingID}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Response != nil {
		if e.Response.Status != "" {
			return e.Response.Status
		}
		return http.StatusText(e.Response.StatusCode)
	}
	return "sw360 request failed"
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status code, or 0 when there was no response
func (e *Error) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Is implements errors.Is for status based sentinel matching
func (e *Error) Is(target error) bool {
	switch e.StatusCode() {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == ErrUnauthorized
	}
	return false
}

// DetailString returns a string member of Details
func (e *Error) DetailString(key string) string {
	if v, ok := e.Details[key].(string); ok {
		return v
	}
	return ""
}
