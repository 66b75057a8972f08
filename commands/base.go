// Package commands holds the built-in shell commands.
package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
)

// Builtin is a command that ships with the shell.
type Builtin struct {
	Contract *shell.Contract
	Behavior shell.Behavior
}

// ListBuiltinCommands returns the built-in commands. help and man read the
// given registry.
func ListBuiltinCommands(reg *shell.Registry) []Builtin {
	return []Builtin{
		{echoContract(), shell.BehaviorFunc(Echo)},
		{tacContract(), shell.BehaviorFunc(Tac)},
		{helpContract(), helpBehavior(reg)},
		{manContract(), manBehavior(reg)},
		{configContract(), shell.BehaviorFunc(Config)},
		{selectContract(), shell.BehaviorFunc(Select)},
		{addContract(), shell.BehaviorFunc(Add)},
		{rmContract(), shell.BehaviorFunc(Remove)},
		{lsContract(), shell.BehaviorFunc(List)},
		{viewContract(), shell.BehaviorFunc(View)},
		{setContract(), shell.BehaviorFunc(SetAttribute)},
		{getContract(), shell.BehaviorFunc(GetAttribute)},
		{unsetContract(), shell.BehaviorFunc(RemoveAttribute)},
		{sortContract(), shell.BehaviorFunc(Sort)},
		{findContract(), shell.BehaviorFunc(Find)},
	}
}

// RegisterAll adds the built-in commands to reg.
func RegisterAll(reg *shell.Registry) error {
	for _, b := range ListBuiltinCommands(reg) {
		if err := reg.Register(b.Contract, b.Behavior); err != nil {
			return err
		}
	}
	return nil
}

func warnf(out shell.Sink, format string, a ...interface{}) {
	out.SetColor(shell.ColorYellow)
	out.Printf(format, a...)
	out.SetColor(shell.ColorReset)
}

func errorf(out shell.Sink, format string, a ...interface{}) {
	out.SetColor(shell.ColorRed)
	out.Printf(format, a...)
	out.SetColor(shell.ColorReset)
}

func printUnusableInput(out shell.Sink, in *shell.Input) {
	warnf(out, "This command can't use piped input of type %T.\n", in.Data)
}

// TargetNode picks the node a tree command works on: a piped node, the node
// operand, or the selected node, in that order. It returns false after
// printing a warning if the piped input isn't a node.
func TargetNode(out shell.Sink, env shell.Env, in *shell.Input) (*tree.Node, bool) {
	if in.Data != nil {
		node, ok := in.Data.(*tree.Node)
		if !ok {
			printUnusableInput(out, in)
			return nil, false
		}
		if in.Has("$0") {
			warnf(out, "Ignoring %q, using the piped node instead.\n", in.Value("$0"))
		}
		return node, true
	}

	if in.Node != nil {
		return in.Node, true
	}
	return env.Tree().Selected(), true
}

// FormatTimestamp renders an epoch millisecond attribute value, "-" if it
// can't be parsed.
func FormatTimestamp(value string) string {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return "-"
	}
	return time.Unix(0, ms*int64(time.Millisecond)).UTC().Format("2006-01-02 15:04")
}

func nodePaths(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.String()
	}
	return out
}

func parseIndex(value string) (int, error) {
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("cannot parse %q as index", value)
	}
	return i, nil
}
