package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for the failure modes of the tool
type ErrorCode string

const (
	// FileNotFound indicates a source file does not exist and no content was supplied
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// InvalidPath indicates a path cannot be expressed relative to the project root
	InvalidPath ErrorCode = "INVALID_PATH"
	// UnsupportedFile indicates a file extension has no grammar
	UnsupportedFile ErrorCode = "UNSUPPORTED_FILE"
	// ParseFailed indicates the syntax tree could not be produced or contains errors
	ParseFailed ErrorCode = "PARSE_FAILED"
	// UnknownRule indicates a rule name is not registered
	UnknownRule ErrorCode = "UNKNOWN_RULE"
	// InvalidRule indicates a rule definition is incomplete
	InvalidRule ErrorCode = "INVALID_RULE"
	// DuplicateRule indicates a rule name is already registered
	DuplicateRule ErrorCode = "DUPLICATE_RULE"
	// RegistryFrozen indicates the registry no longer accepts changes
	RegistryFrozen ErrorCode = "REGISTRY_FROZEN"
	// PluginLoad indicates a rule plugin could not be opened or has the wrong shape
	PluginLoad ErrorCode = "PLUGIN_LOAD"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Error is a coded error carrying the offending path when there is one
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	cause   error
}

// New creates an Error without an underlying cause
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around cause
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithPath attaches the file the error refers to
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code, so errors.Is
// can match on a sentinel built with New(code, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries code anywhere in its chain
func IsCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &Error{Code: code})
}
