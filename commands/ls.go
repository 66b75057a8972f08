package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
)

func lsContract() *shell.Contract {
	c := shell.NewContract("ls", "Lists the child nodes of a tree node.").
		WithNodeOperand(1, 0, true).
		WithFlag("--long", "use a long listing format with indexes and timestamps", "-l").
		CallableEmpty()
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode list"
	c.Examples = []string{"ls", "ls /Servers --long"}
	c.Note = "Nodes that have children of their own are listed with a trailing '/'."
	return c
}

// List prints the children of a node.
func List(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	node, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	children := node.Children()
	if in.Piped {
		return shell.Success(children), nil
	}

	if in.Has("--long") {
		printLongListing(out, node, children)
		return shell.Success(children), nil
	}

	for _, child := range children {
		if len(child.Children()) == 0 {
			out.Println(child.Text())
			continue
		}
		out.SetColor(shell.ColorBlue)
		out.Print(child.Text() + tree.Separator)
		out.SetColor(shell.ColorReset)
		out.Println()
	}
	return shell.Success(children), nil
}

func printLongListing(out shell.Sink, parent *tree.Node, children []*tree.Node) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Children of %q:\n\n", parent.Text())

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tCREATED\tMODIFIED\tCHILDREN\tNAME")
	for i, child := range children {
		created, _ := child.Attribute(tree.AttrCreated)
		modified, _ := child.Attribute(tree.AttrModified)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			i,
			FormatTimestamp(created),
			FormatTimestamp(modified),
			len(child.Children()),
			child.Text())
	}
	tw.Flush()

	out.Print(sb.String())
}
