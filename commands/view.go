package commands

import (
	"github.com/josephlewis42/keyshell/core/shell"
)

func viewContract() *shell.Contract {
	c := shell.NewContract("view", "Displays all attributes of a tree node.").
		WithNodeOperand(1, 0, true).
		CallableEmpty()
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode"
	c.Examples = []string{"view", "view /Servers/web"}
	return c
}

// View prints the id and attributes of a node.
func View(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	out.Printf("Attributes of '%s'\n", node.Text())
	out.Printf("#0\tName:\tid\n\tValue:\t%d\n\n", node.ID)
	for i, name := range node.Attributes() {
		value, _ := node.Attribute(name)
		out.Printf("#%d\tName:\t%s\n\tValue:\t%s\n\n", i+1, name, value)
	}
	return shell.Success(node), nil
}
