package shell

import (
	"errors"
	"fmt"
)

// ErrExit is returned by Session.Run when the line asked to leave the shell.
var ErrExit = errors.New("exit")

// ParseError is a malformed line, it's detected before any command is built.
type ParseError struct {
	// Command is the name of the command being parsed, it may be partial
	// if the name itself is malformed.
	Command string
	// Text is the segment of input being parsed when the error occurred.
	Text string
	// Offset is the byte offset into the line.
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("syntax error at %d: %s: %q", e.Offset, e.Msg, e.Text)
	}
	return fmt.Sprintf("%s: syntax error at %d: %s (in %q)", e.Command, e.Offset, e.Msg, e.Text)
}

// ContractViolation is a command invocation that doesn't match the
// command's contract. It is raised before the command runs.
type ContractViolation struct {
	Command string
	Text    string
	Msg     string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s (in %q)", e.Command, e.Msg, e.Text)
}

func violationf(cmd ParsedCommand, format string, a ...interface{}) *ContractViolation {
	return &ContractViolation{
		Command: cmd.Name,
		Text:    cmd.Text,
		Msg:     fmt.Sprintf(format, a...),
	}
}

// ExecutionError is a failure raised by the command behavior itself.
type ExecutionError struct {
	Command string
	Text    string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrorKind names the category of a dispatch error for logging.
func ErrorKind(err error) string {
	var (
		parseErr     *ParseError
		violationErr *ContractViolation
		execErr      *ExecutionError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExit):
		return "exit"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &violationErr):
		return "violation"
	case errors.As(err, &execErr):
		return "execution"
	default:
		return "unknown"
	}
}
