package errors

import (
	"fmt"
	"io/fs"
)

// Exit codes shared by every command.
const (
	ExitClean      = 0
	ExitViolations = 1
	ExitError      = 2
)

// NotFoundError reports a scan target that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path does not exist: %s", e.Path)
}

// Unwrap lets callers match the error with errors.Is(err, fs.ErrNotExist).
func (e *NotFoundError) Unwrap() error {
	return fs.ErrNotExist
}

// NewNotFoundError creates a NotFoundError for path.
func NewNotFoundError(path string) error {
	return &NotFoundError{Path: path}
}

// CommandError carries the process exit code for a failed or flagged command run.
type CommandError struct {
	ExitCode    int
	CommonError string
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError wraps err with the exit code the command should terminate with.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}
