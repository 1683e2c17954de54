package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The API or the input rejected the operation
	ExitCommandError = 2 // Command error (bad flags, unreachable store, etc.)
)

// Error codes carried in CLIError.Code.
const (
	ErrCodeGeneric      = "E000"
	ErrCodeInvalidInput = "E001"
	ErrCodeNotFound     = "E002"
	ErrCodeUnauthorized = "E003"
	ErrCodeNetwork      = "E004"
	ErrCodeAPI          = "E005"
	ErrCodeEmptyCart    = "E006"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for errors and verbose output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command's output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs data: as a JSON envelope, or through text when the format
// is text. A nil text prints data with fmt.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == nil {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return text(f.Writer)
}

// Error outputs an error in the configured format. Field details of a
// validation error are always listed; other details only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if fields, ok := details.(map[string]string); ok {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, fields[k])
		}
		return nil
	}
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled. It goes to
// ErrWriter so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps err onto an exit code, an error code and the message shown.
func classify(err error) (exit int, code, message string, details any) {
	var (
		exitErr *ExitError
		verr    *validation.Error
		apiErr  *clients.APIError
	)

	exit = ExitFailure
	code, message = ErrCodeGeneric, err.Error()
	switch {
	case errors.Is(err, query.ErrInvalid):
		exit, code = ExitCommandError, ErrCodeInvalidInput
	case errors.As(err, &verr):
		code, message, details = ErrCodeInvalidInput, "validation failed", verr.Fields
	case errors.Is(err, checkout.ErrEmptyCart):
		code, message = ErrCodeEmptyCart, "cart is empty"
	case errors.Is(err, clients.ErrTooManyImages):
		exit, code = ExitCommandError, ErrCodeInvalidInput
	case errors.Is(err, clients.ErrUnauthorized):
		code, message = ErrCodeUnauthorized, "not logged in, run: shopctl admin login"
		if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Message != "Unauthorized" {
			message = apiErr.Message
		}
	case errors.As(err, &apiErr):
		code, message = ErrCodeAPI, clients.UserMessage(apiErr)
		if apiErr.StatusCode == 404 {
			code = ErrCodeNotFound
		}
		details = apiErr.Detail
	case errors.Is(err, clients.ErrNetwork):
		code, message, details = ErrCodeNetwork, "network error", err.Error()
	default:
		exit = ExitCommandError
	}

	if errors.As(err, &exitErr) {
		exit = exitErr.Code
		if code == ErrCodeGeneric {
			message = exitErr.Error()
		}
	}
	return exit, code, message, details
}
