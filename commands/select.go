package commands

import (
	"github.com/josephlewis42/keyshell/core/shell"
)

func selectContract() *shell.Contract {
	c := shell.NewContract("select", "Selects a tree node by its path or index.").
		WithNodeOperand(1, 0, true).
		WithOption(shell.Option{Name: "--index", Aliases: []string{"-i"}, Params: 1, Description: "select a child by its index"}).
		WithFlag("--get", "output the node without selecting it", "-g", "-o", "--out").
		CallableEmpty()
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode"
	c.Examples = []string{"select /path/to/node", "select ..", "select --index 0", "find / web --next | select"}
	return c
}

// Select changes the selected node and prints its path.
func Select(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	if in.Has("--index") && in.Has("$0") && in.Data == nil {
		warnf(out, "You cannot use a node path and the '--index' option at the same time.\n")
		return shell.Failure(nil), nil
	}

	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	if in.Has("--index") && in.Data == nil {
		index, err := parseIndex(in.Value("--index"))
		if err != nil {
			errorf(out, "%v\n", err)
			return shell.Failure(nil), nil
		}
		child, err := node.ChildAt(index)
		if err != nil {
			errorf(out, "Unable to find child node with index '%d'.\n", index)
			return shell.Failure(nil), nil
		}
		node = child
	}

	if !in.Has("--get") {
		env.Tree().Select(node)
	}
	if !in.Piped {
		out.Println(node.String())
	}
	return shell.Success(node), nil
}

var _ shell.BehaviorFunc = Select

func addContract() *shell.Contract {
	c := shell.NewContract("add", "Adds a new tree node.").
		WithNodeOperand(2, 0, true)
	c.Operands.Description = "{parent node} [node name]"
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode"
	c.Examples = []string{"add /Servers mail", "add mail"}
	return c
}

// Add creates a child node.
func Add(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	parent, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	node := env.Tree().Add(parent, in.Value("$1"))
	return shell.Success(node), nil
}
