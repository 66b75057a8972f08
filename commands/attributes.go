package commands

import (
	"strings"

	"github.com/josephlewis42/keyshell/core/shell"
)

// textAttribute addresses the node's text instead of an attribute.
const textAttribute = "text"

func setContract() *shell.Contract {
	c := shell.NewContract("set", "Sets an attribute of a tree node.").
		WithNodeOperand(3, 0, true)
	c.Operands.Description = "{tree node} [attribute name] [value]"
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode"
	c.Examples = []string{"set /Servers/web host 10.0.0.1", "set text web-01"}
	c.Note = "Setting the attribute 'text' renames the node."
	return c
}

// SetAttribute sets an attribute, or the node text if the name is "text".
func SetAttribute(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	name, value := in.Value("$1"), in.Value("$2")
	if strings.EqualFold(name, textAttribute) {
		node.SetText(value)
	} else {
		node.SetAttribute(name, value)
	}
	return shell.Success(node), nil
}

func getContract() *shell.Contract {
	c := shell.NewContract("get", "Gets the value of an attribute of a tree node.").
		WithNodeOperand(2, 0, true)
	c.Operands.Description = "{tree node} [attribute name]"
	c.PipeIn = "TreeNode"
	c.PipeOut = "String"
	c.Examples = []string{"get /Servers/web host"}
	return c
}

// GetAttribute prints an attribute value.
func GetAttribute(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	name := in.Value("$1")
	value, ok := node.Attribute(name)
	if !ok {
		if !in.Piped {
			out.Printf("Attribute '%s' does not exist.\n", name)
		}
		return shell.Failure(nil), nil
	}

	if !in.Piped {
		out.Println(value)
	}
	return shell.Success(value), nil
}

func unsetContract() *shell.Contract {
	c := shell.NewContract("unset", "Removes an attribute from a tree node.").
		WithNodeOperand(2, 0, true)
	c.Operands.Description = "{tree node} [attribute name]"
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode"
	c.Examples = []string{"unset /Servers/web host"}
	return c
}

// RemoveAttribute deletes an attribute.
func RemoveAttribute(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	name := in.Value("$1")
	if !node.RemoveAttribute(name) {
		warnf(out, "Attribute '%s' does not exist.\n", name)
		return shell.Failure(node), nil
	}
	return shell.Success(node), nil
}
