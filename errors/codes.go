package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeRange indicates a numeric argument is outside its accepted range.
	ErrCodeRange ErrorCode = "RANGE_ERROR"
	// ErrCodeType indicates a value does not have the shape an operation needs.
	ErrCodeType ErrorCode = "TYPE_ERROR"
	// ErrCodeInvalidConfig indicates tool configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var codeKinds = map[ErrorCode]string{
	ErrCodeRange:         "range",
	ErrCodeType:          "type",
	ErrCodeInvalidConfig: "config",
}

// Kind returns the short lowercase name of the code, or "unknown".
func (c ErrorCode) Kind() string {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return "unknown"
}
