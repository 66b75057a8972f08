package commands

import (
	"github.com/josephlewis42/keyshell/core/shell"
)

func sortContract() *shell.Contract {
	c := shell.NewContract("sort", "Sorts the child nodes of a tree node alphabetically.").
		WithNodeOperand(1, 0, true).
		WithFlag("--recursive", "sort all nodes below too", "-r").
		CallableEmpty()
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode"
	c.Examples = []string{"sort / --recursive"}
	return c
}

// Sort orders the children of a node by their text.
func Sort(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	env.Tree().Sort(node, in.Has("--recursive"))
	return shell.Success(node), nil
}
