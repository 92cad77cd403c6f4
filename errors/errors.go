package errors

import (
	stderrors "errors"
	"fmt"
	"math"
)

// SeqError is the error type raised by the sequence engines themselves.
type SeqError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Sentinels matched by SeqError.Is, for use with the standard errors.Is.
var (
	ErrRange = &SeqError{Code: ErrCodeRange, Message: "range error"}
	ErrType  = &SeqError{Code: ErrCodeType, Message: "type error"}

	ErrInvalidConfig = &SeqError{Code: ErrCodeInvalidConfig, Message: "invalid configuration"}
)

// Error returns the string representation of the error.
func (e *SeqError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *SeqError) Unwrap() error { return e.Cause }

// Is reports whether target is a SeqError with the same code.
func (e *SeqError) Is(target error) bool {
	t, ok := target.(*SeqError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *SeqError) WithCause(cause error) *SeqError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *SeqError) WithDetail(key string, value any) *SeqError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new SeqError.
func New(code ErrorCode, message string) *SeqError {
	return &SeqError{Code: code, Message: message}
}

// --- Engine error constructors ---

// InvalidLimit creates a range error for a Take or Drop limit.
func InvalidLimit(op string, limit float64) *SeqError {
	details := map[string]any{"operation": op}
	// JSON encoders reject infinities; keep the raw value only when finite.
	if !math.IsInf(limit, 0) {
		details["limit"] = limit
	}
	return &SeqError{
		Code:    ErrCodeRange,
		Message: fmt.Sprintf("%s: invalid limit %v, must not be negative", op, limit),
		Details: details,
	}
}

// EmptyReduce creates a type error for a reduction with no seed over an empty sequence.
func EmptyReduce() *SeqError {
	return &SeqError{
		Code:    ErrCodeType,
		Message: "reduce of empty sequence with no initial value",
	}
}

// NotCallable creates a type error for a nil callback.
func NotCallable(op, param string) *SeqError {
	return &SeqError{
		Code:    ErrCodeType,
		Message: fmt.Sprintf("%s: %s must be a function", op, param),
		Details: map[string]any{"operation": op, "param": param},
	}
}

// NotIterable creates a type error for a value that exposes no iteration capability.
func NotIterable(v any, want string) *SeqError {
	return &SeqError{
		Code:    ErrCodeType,
		Message: fmt.Sprintf("%T is not iterable as %s", v, want),
		Details: map[string]any{"got": fmt.Sprintf("%T", v), "want": want},
	}
}

// UnexpectedInner creates a type error for a flat-map result that is neither
// an iterable of the element type nor an element itself.
func UnexpectedInner(v any, want string) *SeqError {
	return &SeqError{
		Code:    ErrCodeType,
		Message: fmt.Sprintf("flatMap: mapper returned %T, want %s or an iterable of it", v, want),
		Details: map[string]any{"got": fmt.Sprintf("%T", v), "want": want},
	}
}

// InvalidConfig creates a configuration error listing per-field problems.
func InvalidConfig(message string, fields any) *SeqError {
	e := &SeqError{Code: ErrCodeInvalidConfig, Message: message}
	if fields != nil {
		e.WithDetail("fields", fields)
	}
	return e
}

// --- Predicates ---

// AsSeqError converts an error to a SeqError if possible.
func AsSeqError(err error) (*SeqError, bool) {
	var se *SeqError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsRange reports whether err is, or wraps, a range error.
func IsRange(err error) bool {
	return stderrors.Is(err, ErrRange)
}

// IsType reports whether err is, or wraps, a type error.
func IsType(err error) bool {
	return stderrors.Is(err, ErrType)
}

// IsInvalidConfig reports whether err is, or wraps, a configuration error.
func IsInvalidConfig(err error) bool {
	return stderrors.Is(err, ErrInvalidConfig)
}
