package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/coregx/quill/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Input rejected by the builder
	ExitCommandError = 2 // Command error (unreadable file, malformed JSON or YAML)
)

// Error codes reported by commands.
const (
	ErrCodeReadFailed  = "E001" // Input file could not be read
	ErrCodeParseFailed = "E002" // Input is not valid JSON or YAML
	ErrCodeRejected    = "E003" // Builder rejected the input
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

// WrapExitError wraps an existing error with an exit code.
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
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// StatementOutput is the payload of a successful command.
type StatementOutput struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

func newStatementOutput(stmt *core.Statement) StatementOutput {
	params := stmt.Params
	if params == nil {
		params = []interface{}{}
	}
	return StatementOutput{SQL: stmt.SQL, Params: params}
}

func (f *OutputFormatter) encode(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Statement outputs a built statement in the configured format. Text output
// is the SQL on one line and the parameters as a JSON array on the next.
func (f *OutputFormatter) Statement(stmt *core.Statement) error {
	out := newStatementOutput(stmt)
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: out})
	}

	params, err := json.Marshal(out.Params)
	if err != nil {
		return err
	}
	fmt.Fprintln(f.Writer, out.SQL)
	fmt.Fprintf(f.Writer, "params: %s\n", params)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// fail writes the error and returns the matching ExitError.
func (f *OutputFormatter) fail(code string, err error) error {
	exit := ExitCommandError
	var details interface{}
	var injErr *core.InjectionError
	if errors.As(err, &injErr) {
		code = ErrCodeRejected
		exit = ExitFailure
		details = map[string]string{"value": injErr.Value, "reason": injErr.Reason}
	}
	_ = f.Error(code, err.Error(), details)
	return WrapExitError(exit, code, err)
}

// emit outputs stmt, or the rejection that prevented it.
func (f *OutputFormatter) emit(stmt *core.Statement, err error) error {
	if err != nil {
		return f.fail(ErrCodeRejected, err)
	}
	return f.Statement(stmt)
}
