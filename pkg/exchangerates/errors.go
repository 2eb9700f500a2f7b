package exchangerates

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind tells which class of failure the API reported.
// A kind is an error itself, so callers branch with errors.Is.
type ErrorKind int

const (
	ErrRequest ErrorKind = iota + 1
	ErrServer
	ErrAuthentication
	ErrRateLimit
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrServer:
		return "server error"
	case ErrAuthentication:
		return "authentication failed"
	case ErrRateLimit:
		return "rate limit exceeded"
	default:
		return "exchange rates api error"
	}
}

func (k ErrorKind) String() string {
	switch k {
	case ErrRequest:
		return "request"
	case ErrServer:
		return "server"
	case ErrAuthentication:
		return "authentication"
	case ErrRateLimit:
		return "rate_limit"
	default:
		return "unknown"
	}
}

// KindForStatus maps a non-200 status code to an error kind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code >= 500 && code <= 599:
		return ErrServer
	case code == http.StatusUnauthorized:
		return ErrAuthentication
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	default:
		return ErrRequest
	}
}

// ErrRateNotFound is returned by Convert when the response has no rate for the target currency.
var ErrRateNotFound = errors.New("rate not found")

// Error is a failed API call. Response holds the decoded error body when the
// server sent a JSON object, Body the raw bytes either way.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Response   *Payload
	Body       []byte
}

func NewError(kind ErrorKind, message string, resp *Payload) *Error {
	if message == "" {
		message = kind.Error()
	}
	return &Error{Kind: kind, Message: message, Response: resp}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newStatusError(status int, body []byte) *Error {
	var resp *Payload
	if p, err := ParsePayload(body); err == nil {
		resp = p
	}

	e := NewError(KindForStatus(status), statusMessage(status, resp), resp)
	e.StatusCode = status
	e.Body = body
	return e
}

func statusMessage(status int, resp *Payload) string {
	msg := fmt.Sprintf("status %d", status)
	if resp == nil {
		return msg
	}
	info, ok := resp.ErrorInfo()
	if !ok {
		return msg
	}
	return fmt.Sprintf("%s: %s (code %s)", msg, info.Message, info.Code)
}

// ErrorInfo is the API's error envelope: {"error": {"code": 101, "info": "..."}}.
type ErrorInfo struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
}
