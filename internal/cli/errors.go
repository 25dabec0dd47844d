package cli

import (
	"errors"
	"fmt"

	"github.com/alexbrand/stepexport/internal/config"
	"github.com/alexbrand/stepexport/internal/loader"
	"github.com/alexbrand/stepexport/internal/output"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1 // General error (render, publish, auth)
	ExitUsageError  = 2 // Unknown flag or bad flag value
	ExitLoadError   = 3 // Module or feature files could not be loaded
	ExitConfigError = 4 // Configuration error
	ExitIOError     = 5 // Output file could not be written
)

// ExitCodeError is an error that carries an exit code.
type ExitCodeError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitCodeError) Error() string {
	switch {
	case e.Message == "":
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// NewExitCodeError creates a new ExitCodeError with the given code and message.
func NewExitCodeError(code int, message string) *ExitCodeError {
	return &ExitCodeError{Code: code, Message: message}
}

// WrapExitCodeError wraps an existing error with an exit code.
func WrapExitCodeError(code int, message string, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Message: message, Err: err}
}

// ConfigError creates a configuration error (exit code 4).
func ConfigError(err error) *ExitCodeError {
	return WrapExitCodeError(ExitConfigError, "", err)
}

// exitError attaches the exit code matching the error's sentinel.
func exitError(err error) error {
	var exitErr *ExitCodeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, loader.ErrLoad):
		return WrapExitCodeError(ExitLoadError, "", err)
	case errors.Is(err, output.ErrIO):
		return WrapExitCodeError(ExitIOError, "", err)
	case errors.Is(err, config.ErrInvalid):
		return ConfigError(err)
	default:
		return err
	}
}

// GetExitCode returns the exit code from an error.
// If the error is an ExitCodeError, returns its code.
// Otherwise, returns 1 (general error).
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}
