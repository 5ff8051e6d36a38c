package client

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes for failures that never reached a server response.
const (
	CodeNetwork        = "NETWORK_ERROR"
	CodeTimeout        = "TIMEOUT"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeBadResponse    = "INVALID_RESPONSE"
)

// errorBody covers the two error shapes the API emits:
// {"error": {"message", "code", "status_code", "details"}} and
// {"success": false, "error": "...", "message": "..."}.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
}

type structuredError struct {
	Message    string         `json:"message"`
	Code       string         `json:"code"`
	StatusCode int            `json:"status_code"`
	Details    map[string]any `json:"details"`
}

func apiError(status int, body []byte, method, path, requestID string) *goerrors.Error {
	message := http.StatusText(status)
	textCode := goerrors.HTTPStatusToTextCode(status)
	var details map[string]any

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		var se structuredError
		var plain string
		switch {
		case len(eb.Error) > 0 && json.Unmarshal(eb.Error, &se) == nil && se.Message != "":
			message = se.Message
			if se.Code != "" {
				textCode = se.Code
			}
			details = se.Details
		case len(eb.Error) > 0 && json.Unmarshal(eb.Error, &plain) == nil && plain != "":
			message = plain
		case eb.Message != "":
			message = eb.Message
		case eb.Msg != "":
			message = eb.Msg
		}
	}

	meta := map[string]any{"method": method, "path": path}
	if len(details) > 0 {
		meta["details"] = details
	}

	return goerrors.New(message, goerrors.HTTPStatusToCategory(status)).
		WithCode(status).
		WithTextCode(textCode).
		WithRequestID(requestID).
		WithMetadata(meta)
}

func transportError(err error, method, path, requestID string) *goerrors.Error {
	code := CodeNetwork
	message := "request failed"
	var netErr net.Error
	if goerrors.Is(err, context.DeadlineExceeded) || (goerrors.As(err, &netErr) && netErr.Timeout()) {
		code = CodeTimeout
		message = "request timed out"
	}

	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithTextCode(code).
		WithRequestID(requestID).
		WithMetadata(map[string]any{"method": method, "path": path})
}

func sessionExpiredError() *goerrors.Error {
	return goerrors.New("session expired, please log in again", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(CodeSessionExpired)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// TextCode returns the machine readable code carried by err, or "".
func TextCode(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e.TextCode
	}
	return ""
}

// Message returns the human readable message of err without the category
// prefix go-errors adds.
func Message(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

// IsUnauthorized reports a 401 or an auth category error.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized || goerrors.IsAuth(err)
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
