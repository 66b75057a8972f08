package commands

import (
	"github.com/josephlewis42/keyshell/core/shell"
)

func rmContract() *shell.Contract {
	c := shell.NewContract("rm", "Removes a tree node.").
		WithNodeOperand(1, 0, false).
		CallableEmpty()
	c.Operands.Description = "{node path}"
	c.PipeIn = "TreeNode"
	c.Examples = []string{"rm /path/to/any/node", "select --get web | rm"}
	return c
}

// Remove deletes a node and everything below it.
func Remove(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	if in.Node == nil && in.Data == nil {
		out.Println("Unknown node path. Usage: rm NODE_PATH")
		return shell.Failure(nil), nil
	}

	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	if err := env.Tree().Remove(node); err != nil {
		errorf(out, "%v\n", err)
		return shell.Failure(nil), nil
	}
	return shell.Success(nil), nil
}
