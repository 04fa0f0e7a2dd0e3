package indexnow

import (
	"errors"
	"fmt"
)

// Error codes. The delivery codes double as ResultRecord.ErrorCode values.
const (
	EDISABLED        = "Disabled"
	EMISSINGKEY      = "MissingKey"
	EINVALIDENDPOINT = "InvalidEndpoint"
	EINVALIDSITE     = "InvalidSite"
	ENOVALIDURLS     = "NoValidUrls"
	ETRANSPORT       = "TransportError"
	EHTTP            = "HttpError"
	EKEYNOTREACHABLE = "KeyNotReachable"

	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EINTERNAL = "internal"
)

// Error represents an application-specific error.
// Status and Body are only set for HTTP-level failures.
type Error struct {
	Code    string
	Message string
	Status  int
	Body    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("indexnow error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// HTTPErrorf returns an Error carrying the response status and a body prefix.
func HTTPErrorf(code string, status int, body string, format string, args ...any) *Error {
	e := Errorf(code, format, args...)
	e.Status = status
	e.Body = body
	return e
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorStatus returns the HTTP status attached to an application error, or 0.
func ErrorStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// ErrorBody returns the response body prefix attached to an application error.
func ErrorBody(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Body
	}
	return ""
}
