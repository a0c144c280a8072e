package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies why a request failed before it was collapsed into a RequestError.
type ErrorKind int

const (
	// KindTransport means the backend could not be reached.
	KindTransport ErrorKind = iota + 1
	// KindStatus means the backend answered with a non-success status code.
	KindStatus
	// KindDecode means the response body could not be decoded.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// RequestError is the single error type surfaced by the fetch client.
// Error returns only the human-readable message shown to the user.
type RequestError struct {
	Kind    ErrorKind
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of a KindStatus error and 0 otherwise.
func (e *RequestError) StatusCode() int {
	if e.Kind != KindStatus {
		return 0
	}
	return e.Status
}

// Message returns the text shown to the user for err: the message of the
// RequestError it wraps, or err's own text.
func Message(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return err.Error()
}

func transportError(method, path string, err error) *RequestError {
	return &RequestError{
		Kind:    KindTransport,
		Method:  method,
		Path:    path,
		Message: fmt.Sprintf("%s %s: backend unreachable", method, path),
		Err:     err,
	}
}

func decodeError(method, path string, err error) *RequestError {
	return &RequestError{
		Kind:    KindDecode,
		Method:  method,
		Path:    path,
		Message: fmt.Sprintf("%s %s: malformed response", method, path),
		Err:     err,
	}
}

// statusError builds a RequestError from a non-success response body. The
// backend reports failures as {"message": "..."}; anything else falls back
// to the status text.
func statusError(method, path string, status int, body []byte) *RequestError {
	msg := ""
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("%s %s: %s", method, path, http.StatusText(status))
	}

	return &RequestError{
		Kind:    KindStatus,
		Method:  method,
		Path:    path,
		Status:  status,
		Message: msg,
		Err:     fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body))),
	}
}
