package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime/debug"
)

// Events written to the session's Recorder.
const (
	EventDispatch  = "dispatch"
	EventCommand   = "command"
	EventViolation = "violation"
	EventPanic     = "panic"
)

// exitKeyword ends the session unless a command of the same name is
// registered.
const exitKeyword = "exit"

// State is the dispatcher state of a session.
type State int

const (
	StateReady State = iota
	StateRunning
	StateSuccess
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateSuccess:
		return "SUCCESS"
	case StateAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes how a line was dispatched.
type Result struct {
	// State is StateSuccess or StateAborted.
	State State
	// Executed is the number of behaviors that were invoked.
	Executed int
	// Last is the output of the last invoked behavior.
	Last Output
}

// Recorder stores structured events about dispatched lines.
type Recorder interface {
	Record(event string, fields map[string]interface{}) error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the operator log.
func WithLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRecorder sets where events are stored.
func WithRecorder(recorder Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = recorder
	}
}

// Session runs lines against a registry. It's meant to be driven by a
// single goroutine, each console, script or SSH connection gets its own.
type Session struct {
	registry *Registry
	env      Env
	out      Sink

	logger   *log.Logger
	recorder Recorder

	state State
}

// NewSession creates a new session in the READY state.
func NewSession(registry *Registry, env Env, out Sink, opts ...SessionOption) *Session {
	s := &Session{
		registry: registry,
		env:      env,
		out:      out,
		logger:   log.New(io.Discard, "", 0),
		state:    StateReady,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the state the last line left the session in.
func (s *Session) State() State {
	return s.state
}

// Registry returns the registry commands are looked up in.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Run expands, parses and dispatches a single line.
//
// Commands run in order. A ParseError or ContractViolation stops the line
// before anything runs, an ExecutionError stops the rest of the chain.
// Effects of commands that already ran are kept. ErrExit is returned when
// the chain reaches the exit keyword.
func (s *Session) Run(line string) (Result, error) {
	s.state = StateReady

	expanded := ExpandVariables(line, s.lookupVariable)
	cmds, err := Parse(expanded)
	if err != nil {
		return s.finish(line, 0, Result{}, err)
	}

	cmds, err = s.resolveAliases(cmds)
	if err != nil {
		return s.finish(line, len(cmds), Result{}, err)
	}

	if err := s.checkCommands(cmds); err != nil {
		return s.finish(line, len(cmds), Result{}, err)
	}

	res, err := s.dispatch(cmds)
	return s.finish(line, len(cmds), res, err)
}

func (s *Session) dispatch(cmds []ParsedCommand) (Result, error) {
	var (
		res  Result
		data interface{}
	)

	for i, cmd := range cmds {
		s.state = StateRunning

		command, ok := s.registry.Lookup(cmd.Name)
		if !ok && cmd.Name == exitKeyword {
			return res, ErrExit
		}

		in, err := Bind(cmd, command.Contract, s.resolver())
		if err != nil {
			return res, err
		}
		if i > 0 && cmds[i-1].Exec == ExecPipe {
			in.Data = data
		}
		in.Piped = cmd.Exec == ExecPipe && i < len(cmds)-1

		out, err := s.invoke(cmd, command.Behavior, in)
		res.Executed++
		res.Last = out
		if err != nil {
			return res, err
		}
		s.record(EventCommand, map[string]interface{}{
			"command":   cmd.Name,
			"exit_code": out.ExitCode,
		})

		data = out.Data
		if cmd.Exec == ExecRequireExit0 && out.ExitCode != 0 {
			break
		}
	}

	return res, nil
}

// invoke runs a behavior, converting panics and plain errors to
// ExecutionErrors. The sink color is reset afterwards.
func (s *Session) invoke(cmd ParsedCommand, behavior Behavior, in *Input) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("panic running %q: %v\n%s", cmd.Text, r, debug.Stack())
			s.record(EventPanic, map[string]interface{}{
				"command": cmd.Name,
				"context": fmt.Sprint(r),
			})
			out = Output{ExitCode: 1}
			err = &ExecutionError{Command: cmd.Name, Text: cmd.Text, Err: fmt.Errorf("panic: %v", r)}
		}
		s.out.SetColor(ColorReset)
	}()

	out, err = behavior.Execute(s.out, s.env, in)
	if err == nil {
		return out, nil
	}

	var (
		violation *ContractViolation
		execErr   *ExecutionError
	)
	if errors.As(err, &violation) || errors.As(err, &execErr) {
		return out, err
	}
	return out, &ExecutionError{Command: cmd.Name, Text: cmd.Text, Err: err}
}

// checkCommands makes sure every command of the line exists before any of
// them runs.
func (s *Session) checkCommands(cmds []ParsedCommand) error {
	for _, cmd := range cmds {
		if _, ok := s.registry.Lookup(cmd.Name); ok {
			continue
		}
		if cmd.Name == exitKeyword {
			// Nothing after exit can run.
			return nil
		}
		return violationf(cmd, "command not found")
	}
	return nil
}

// resolveAliases replaces alias names with their values. Aliases aren't
// expanded recursively and must expand to a single command.
func (s *Session) resolveAliases(cmds []ParsedCommand) ([]ParsedCommand, error) {
	out := make([]ParsedCommand, 0, len(cmds))
	for _, cmd := range cmds {
		value, ok := s.registry.Alias(cmd.Name)
		if !ok {
			out = append(out, cmd)
			continue
		}

		tokens, err := Tokenize(value)
		if err != nil {
			return nil, violationf(cmd, "bad alias %q: %v", value, err)
		}
		if len(tokens) == 0 {
			return nil, violationf(cmd, "alias is empty")
		}

		var words []string
		for _, tok := range tokens {
			if tok.IsOperator() {
				return nil, violationf(cmd, "alias %q contains the operator %q", value, tok.Text)
			}
			words = append(words, tok.Text)
		}

		out = append(out, ParsedCommand{
			Name: words[0],
			Args: append(words[1:], cmd.Args...),
			Exec: cmd.Exec,
			Text: cmd.Text,
		})
	}
	return out, nil
}

func (s *Session) resolver() NodeResolver {
	if s.env == nil {
		return nil
	}
	if t := s.env.Tree(); t != nil {
		return t
	}
	return nil
}

// lookupVariable checks the selected node's attributes then the settings.
// Values are escaped, they never add commands or quotes to the line.
func (s *Session) lookupVariable(name string) (string, bool) {
	if s.env == nil {
		return "", false
	}
	if t := s.env.Tree(); t != nil {
		if value, ok := t.Selected().Attribute(name); ok {
			return EscapeValue(value), true
		}
	}
	value, ok := s.env.Setting(name)
	return EscapeValue(value), ok
}

func (s *Session) finish(line string, commands int, res Result, err error) (Result, error) {
	switch {
	case err == nil, errors.Is(err, ErrExit):
		res.State = StateSuccess
	default:
		res.State = StateAborted
	}
	s.state = res.State

	var violation *ContractViolation
	if errors.As(err, &violation) {
		s.record(EventViolation, map[string]interface{}{
			"command": violation.Command,
			"error":   violation.Msg,
		})
	}

	fields := map[string]interface{}{
		"line":     line,
		"commands": commands,
		"executed": res.Executed,
		"state":    res.State.String(),
	}
	if err != nil {
		fields["error_kind"] = ErrorKind(err)
		fields["error"] = err.Error()
	}
	s.record(EventDispatch, fields)

	return res, err
}

func (s *Session) record(event string, fields map[string]interface{}) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(event, fields); err != nil {
		s.logger.Printf("couldn't record %s event: %v", event, err)
	}
}
