package shell

import (
	"errors"

	"github.com/josephlewis42/keyshell/core/tree"
)

// NodeResolver turns a path operand into a tree node.
type NodeResolver interface {
	ResolveNode(path string) (*tree.Node, error)
}

var errNoResolver = errors.New("no tree available to resolve node paths")

// Bind matches the command's arguments against its contract.
//
// Tokens equal to an option name or alias are always treated as that option
// and consume the option's parameters, everything else is assigned to the
// positional keys $0, $1, ... in order. A ContractViolation is returned if the
// arguments don't fit, an ExecutionError if the node operand can't be
// resolved.
func Bind(cmd ParsedCommand, contract *Contract, resolver NodeResolver) (*Input, error) {
	in := &Input{Params: make(map[string][]string)}

	if len(cmd.Args) == 0 {
		if contract.AllowEmpty {
			applyDefaults(contract, in.Params)
			return in, nil
		}
		if contract.Operands.Count > 0 {
			return nil, violationf(cmd, "missing operand: expected %d, got 0", contract.Operands.Count)
		}
		return nil, violationf(cmd, "command can't be called without arguments")
	}

	var positional []string
	for i := 0; i < len(cmd.Args); i++ {
		token := cmd.Args[i]
		opt, ok := contract.option(token)
		if !ok {
			positional = append(positional, token)
			continue
		}

		if remaining := len(cmd.Args) - i - 1; remaining < opt.Params {
			return nil, violationf(cmd, "option %q requires %d parameter(s), got %d", token, opt.Params, remaining)
		}
		in.Params[opt.Name] = append([]string{}, cmd.Args[i+1:i+1+opt.Params]...)
		i += opt.Params
	}

	applyDefaults(contract, in.Params)

	ops := contract.Operands
	skipNode := false
	switch n := len(positional); {
	case ops.Variadic && n >= ops.Count:
	case n == ops.Count:
	case ops.NodeAt != NoNode && ops.NodeOptional && n == ops.Count-1:
		skipNode = true
	case n > ops.Count:
		return nil, violationf(cmd, "expected %d operand(s), got %d: unknown argument %q", ops.Count, n, positional[ops.Count])
	default:
		return nil, violationf(cmd, "missing operand: expected %d, got %d", ops.Count, n)
	}

	for _, opt := range contract.Options {
		if _, ok := in.Params[opt.Name]; opt.Required && !ok {
			return nil, violationf(cmd, "required option %q is missing", opt.Name)
		}
	}

	idx := 0
	for _, value := range positional {
		if skipNode && idx == ops.NodeAt {
			idx++
		}
		in.Params[Positional(idx)] = []string{value}
		idx++
	}

	if ops.NodeAt == NoNode || skipNode {
		return in, nil
	}

	if resolver == nil {
		return nil, &ExecutionError{Command: cmd.Name, Text: cmd.Text, Err: errNoResolver}
	}
	node, err := resolver.ResolveNode(in.Value(Positional(ops.NodeAt)))
	if err != nil {
		return nil, &ExecutionError{Command: cmd.Name, Text: cmd.Text, Err: err}
	}
	in.Node = node

	return in, nil
}

func applyDefaults(contract *Contract, params map[string][]string) {
	for _, opt := range contract.Options {
		if _, ok := params[opt.Name]; ok || len(opt.Defaults) == 0 {
			continue
		}
		params[opt.Name] = append([]string{}, opt.Defaults...)
	}
}
