// Package neterr implements the error taxonomy used throughout netmux.
package neterr

import "fmt"

// Code classifies the failure kinds described in the error handling design.
type Code int

const (
	NoError Code = iota
	RuntimeError
	SocketOperationFailed
	InvalidArgument
	ParserError
	TLSError
)

func (c Code) String() string {
	switch c {
	case NoError:
		return "no_error"
	case RuntimeError:
		return "runtime_error"
	case SocketOperationFailed:
		return "socket_operation_failed"
	case InvalidArgument:
		return "invalid_argument"
	case ParserError:
		return "parser_error"
	case TLSError:
		return "tls_error"
	default:
		return "unknown_error"
	}
}

// Error carries a classified failure plus a human-readable message and an
// optional wrapped cause, mirroring net::error / net::error_code in the
// original implementation.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return Code(NoError).String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func RuntimeErrorf(format string, args ...interface{}) *Error {
	return New(RuntimeError, fmt.Sprintf(format, args...))
}

func SocketFailedf(format string, args ...interface{}) *Error {
	return New(SocketOperationFailed, fmt.Sprintf(format, args...))
}

func InvalidArgumentf(format string, args ...interface{}) *Error {
	return New(InvalidArgument, fmt.Sprintf(format, args...))
}

func ParserErrorf(format string, args ...interface{}) *Error {
	return New(ParserError, fmt.Sprintf(format, args...))
}

func TLSErrorf(format string, args ...interface{}) *Error {
	return New(TLSError, fmt.Sprintf(format, args...))
}
