package shell

import (
	"fmt"

	"github.com/josephlewis42/keyshell/core/tree"
)

// Input is the bound arguments of a single command invocation.
type Input struct {
	// Params maps positional keys ($0, $1, ...) and canonical option names
	// to their values.
	Params map[string][]string
	// Node is the resolved node operand, nil if the command has none or it
	// was left out.
	Node *tree.Node
	// Data is the output of the previous command when it was piped here.
	Data interface{}
	// Piped is set when this command's output is piped to another command.
	Piped bool
}

// Positional returns the key for the i-th positional argument.
func Positional(i int) string {
	return fmt.Sprintf("$%d", i)
}

// Has returns true if the key was bound.
func (in *Input) Has(key string) bool {
	_, ok := in.Params[key]
	return ok
}

// Get returns the values bound to key.
func (in *Input) Get(key string) []string {
	return in.Params[key]
}

// Value returns the first value of key or the empty string.
func (in *Input) Value(key string) string {
	if vals := in.Params[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Output is the result of a command.
type Output struct {
	// ExitCode is zero on success.
	ExitCode int
	// Data is passed to the next command if piped.
	Data interface{}
}

// Success creates an Output with exit code 0.
func Success(data interface{}) Output {
	return Output{ExitCode: 0, Data: data}
}

// Failure creates an Output with exit code 1.
func Failure(data interface{}) Output {
	return Output{ExitCode: 1, Data: data}
}

// Color is a foreground color hint for the output sink.
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorPurple
	ColorCyan
	ColorWhite
)

func (c Color) String() string {
	switch c {
	case ColorReset:
		return "reset"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorBlue:
		return "blue"
	case ColorPurple:
		return "purple"
	case ColorCyan:
		return "cyan"
	case ColorWhite:
		return "white"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Sink is where commands write user visible output.
type Sink interface {
	Print(a ...interface{})
	Println(a ...interface{})
	Printf(format string, a ...interface{})
	// SetColor sets the foreground color of subsequent output.
	SetColor(c Color)
}

// Env is what a command may use from the hosting application.
type Env interface {
	// Tree is the data tree commands operate on.
	Tree() *tree.Tree
	// Setting looks up a settings value.
	Setting(key string) (string, bool)
	// SetSetting stores a settings value.
	SetSetting(key, value string)
	// DeleteSetting removes a setting, returning false if it didn't exist.
	DeleteSetting(key string) bool
	// Settings lists the sorted settings keys.
	Settings() []string
	// Prompt asks the user a question.
	Prompt(question string) (string, error)
}

// Behavior is the implementation of a command.
type Behavior interface {
	Execute(out Sink, env Env, in *Input) (Output, error)
}

// BehaviorFunc adapts a function to a Behavior.
type BehaviorFunc func(out Sink, env Env, in *Input) (Output, error)

// Execute implements Behavior.
func (f BehaviorFunc) Execute(out Sink, env Env, in *Input) (Output, error) {
	return f(out, env, in)
}

var _ Behavior = (BehaviorFunc)(nil)
