package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	goerrors "github.com/goliatone/go-errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The API or the client rejected the operation
	ExitCommandError = 2 // Bad flags, unreadable config or files
)

// ExitError carries the exit code a command failure maps to.
type ExitError struct {
	Code    int
	Message string
	Err     error
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
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON document every command prints in json format.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Success prints data, as JSON or through text.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Error prints err. API errors keep their text code, status and field
// errors.
func (f *OutputFormatter) Error(err error) {
	cliErr := toCLIError(err)

	if f.Format == "json" {
		if werr := f.writeJSON(CLIResponse{Status: "error", Error: cliErr}); werr == nil {
			return
		}
	}

	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, "error: %s\n", err)
	if details, ok := cliErr.Details.(map[string]string); ok {
		for field, msg := range details {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}

// VerboseLog writes to the error stream when verbose output is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toCLIError(err error) *CLIError {
	out := &CLIError{Code: "CLI_ERROR", Message: err.Error()}

	var gerr *goerrors.Error
	if goerrors.As(err, &gerr) {
		out.Message = gerr.Message
		out.Status = gerr.Code
		if gerr.TextCode != "" {
			out.Code = gerr.TextCode
		}
		if fields := gerr.ValidationMap(); len(fields) > 0 {
			out.Details = fields
		}
		return out
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError {
		out.Code = "COMMAND_ERROR"
	}
	return out
}
