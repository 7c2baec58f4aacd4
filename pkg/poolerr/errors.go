// Package poolerr defines the typed error taxonomy shared by the pool,
// worker, channel, executor, and transport packages.
//
// Every error that can cross the Controller/Executor boundary is a *Error
// with a stable Code, so callers can branch with errors.As instead of
// string matching, the same way pkg/storage.StorageError works in the
// wider codebase this package was adapted from.
package poolerr

import "fmt"

// Code identifies a category of failure in the worker pool protocol.
type Code string

const (
	// CodePoolDisposed means an operation was attempted after Dispose.
	CodePoolDisposed Code = "POOL_DISPOSED"
	// CodeInvalidConfig means the pool was constructed with a bad cwd or
	// concurrency value.
	CodeInvalidConfig Code = "INVALID_CONFIG"
	// CodeModuleNotFound means module resolution could not locate a module.
	CodeModuleNotFound Code = "MODULE_NOT_FOUND"
	// CodeModuleImportFailed wraps any error raised while importing a
	// resolved module.
	CodeModuleImportFailed Code = "MODULE_IMPORT_FAILED"
	// CodeInvalidProcessor means an import succeeded but the export (or
	// factory result) was not a function.
	CodeInvalidProcessor Code = "INVALID_PROCESSOR"
	// CodeInvalidFile means a plugin yielded a value without a path.
	CodeInvalidFile Code = "INVALID_FILE"
	// CodePluginError wraps anything a plugin itself raised while
	// processing a file.
	CodePluginError Code = "PLUGIN_ERROR"
	// CodeUnexpectedExit means a worker goroutine exited without being
	// asked to terminate.
	CodeUnexpectedExit Code = "UNEXPECTED_EXIT"
	// CodeTerminating means the operation was cancelled by Dispose.
	CodeTerminating Code = "TERMINATING"
	// CodeProtocolError means a reply referenced an unknown message id.
	CodeProtocolError Code = "PROTOCOL_ERROR"
)

// Error is the typed error carried across the worker pool boundary. It
// preserves the original error kind (Name), a human message, an optional
// stack trace captured at the origination site, and arbitrary custom
// fields a plugin may have attached.
type Error struct {
	Code    Code
	Name    string
	Message string
	Stack   string
	Fields  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Name: string(code), Message: message}
}

// Wrap builds an *Error with the given code, wrapping cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Name: string(code), Message: message, Cause: cause}
}

// PoolDisposed reports use of a disposed pool.
func PoolDisposed() *Error {
	return New(CodePoolDisposed, "worker pool has been disposed")
}

// InvalidConfig reports a bad pool construction argument.
func InvalidConfig(message string) *Error {
	return New(CodeInvalidConfig, message)
}

// ModuleNotFound reports a resolution failure for moduleId from workerId.
func ModuleNotFound(workerID int, moduleID string) *Error {
	e := New(CodeModuleNotFound, fmt.Sprintf("module not found: %s", moduleID))
	e.Fields = map[string]any{"workerId": workerID, "moduleId": moduleID}
	return e
}

// ModuleImportFailed wraps cause with the "Error importing module: <id>"
// prefix convention, preserving cause's kind.
func ModuleImportFailed(moduleID string, cause error) *Error {
	return Wrap(CodeModuleImportFailed, fmt.Sprintf("Error importing module: %s", moduleID), cause)
}

// InvalidProcessor reports a non-function export or factory result.
func InvalidProcessor(message string) *Error {
	return New(CodeInvalidProcessor, message)
}

// InvalidFile reports a plugin output without a path.
func InvalidFile(value any) *Error {
	return New(CodeInvalidFile, fmt.Sprintf("Invalid processor output, expected a file: %#v", value))
}

// Terminating reports a request cancelled by Dispose.
func Terminating() *Error {
	return New(CodeTerminating, "operation cancelled: pool is terminating")
}

// UnexpectedExit reports a worker goroutine that exited without being
// asked to terminate.
func UnexpectedExit(code int) *Error {
	e := New(CodeUnexpectedExit, fmt.Sprintf("worker exited unexpectedly with code %d", code))
	e.Fields = map[string]any{"exitCode": code}
	return e
}

// ProtocolError reports a reply for an id the channel has no record of.
func ProtocolError(id uint64) *Error {
	e := New(CodeProtocolError, fmt.Sprintf("received reply for unknown message id %d", id))
	e.Fields = map[string]any{"messageId": id}
	return e
}
