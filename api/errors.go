// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy for transports. Every condition is handled locally and
// surfaced as a return value; none of them is fatal to the transport.

package api

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeNotReady
	ErrCodeOversize
	ErrCodeEmpty
	ErrCodeQueueFull
	ErrCodeBufferTooSmall
	ErrCodeBridgeMismatch
	ErrCodeBridgeNotReady
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeNotReady:
		return "not_ready"
	case ErrCodeOversize:
		return "oversize"
	case ErrCodeEmpty:
		return "empty"
	case ErrCodeQueueFull:
		return "queue_full"
	case ErrCodeBufferTooSmall:
		return "buffer_too_small"
	case ErrCodeBridgeMismatch:
		return "bridge_mismatch"
	case ErrCodeBridgeNotReady:
		return "bridge_not_ready"
	default:
		return "internal"
	}
}

// Sentinel errors, one per code. Compare with errors.Is.
var (
	ErrNotReady       = NewError(ErrCodeNotReady, "transport not ready")
	ErrOversize       = NewError(ErrCodeOversize, "packet exceeds maximum size")
	ErrEmptyPacket    = NewError(ErrCodeEmpty, "empty packet")
	ErrQueueFull      = NewError(ErrCodeQueueFull, "packet queue full")
	ErrBufferTooSmall = NewError(ErrCodeBufferTooSmall, "receive buffer too small")
	ErrBridgeMismatch = NewError(ErrCodeBridgeMismatch, "bridge accepted a different byte count")
	ErrBridgeNotReady = NewError(ErrCodeBridgeNotReady, "bridge not ready")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of e with key set. Sentinels stay untouched.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Code: e.Code, Message: e.Message, Context: ctx}
}

// CodeOf extracts the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
