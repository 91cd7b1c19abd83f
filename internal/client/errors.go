package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionExpired is returned when the backend answers 401 to an authenticated call.
	// The session has already been cleared when a caller sees it.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrAuthenticationFailed is returned by Login when the credentials are rejected.
	ErrAuthenticationFailed = errors.New("incorrect username or password")

	// ErrRequestFailed matches every *RequestError via errors.Is.
	ErrRequestFailed = errors.New("request failed")

	// ErrTimeout is wrapped by the RequestError returned when the per-request deadline elapses.
	ErrTimeout = errors.New("request timed out")
)

// RequestError is any non-success outcome other than authentication: a non-2xx status,
// a transport failure, or a timeout. StatusCode is 0 when no response was received.
type RequestError struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// parseErrorResponse extracts a meaningful error message from an HTTP error response.
// FastAPI reports {"detail": "..."} or, for validation failures, {"detail": [{"msg": "..."}]}.
func parseErrorResponse(statusCode int, body []byte) *RequestError {
	var errResp struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if msg := detailMessage(errResp.Detail); msg != "" {
			return &RequestError{StatusCode: statusCode, Message: msg}
		}
		if errResp.Error != "" {
			return &RequestError{StatusCode: statusCode, Message: errResp.Error}
		}
		if errResp.Message != "" {
			return &RequestError{StatusCode: statusCode, Message: errResp.Message}
		}
	}
	return &RequestError{StatusCode: statusCode, Message: fmt.Sprintf("request failed (status %d)", statusCode)}
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
