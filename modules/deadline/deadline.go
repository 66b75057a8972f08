// Package deadline lets nodes expire.
package deadline

import (
	"strconv"
	"time"

	"github.com/josephlewis42/keyshell/commands"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
)

const (
	// Attribute holds the expiration time in epoch milliseconds.
	Attribute = "expiration_date"
	// WarnDaysSetting is the number of days before expiration a node is
	// reported.
	WarnDaysSetting = "deadline.warndifference"

	defaultWarnDays = 14
)

// Register adds the deadline and dateconv commands.
func Register(reg *shell.Registry) error {
	return RegisterWithClock(reg, time.Now)
}

// RegisterWithClock is Register with a custom time source for checks.
func RegisterWithClock(reg *shell.Registry, now func() time.Time) error {
	if err := reg.Register(deadlineContract(), &Deadline{now: now}); err != nil {
		return err
	}
	return reg.Register(dateconvContract(), shell.BehaviorFunc(DateConv))
}

func deadlineContract() *shell.Contract {
	c := shell.NewContract("deadline", "Adds or removes an expiration date of a tree node.").
		WithNodeOperand(2, 1, true)
	c.Operands.Description = "DATE|reset|check {tree node}"
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode or the expired TreeNode list when checking"
	c.Examples = []string{"deadline 31.12.2024 /Accounts/mail", "deadline reset", "deadline check"}
	c.Note = "Dates use the format dd.MM.yyyy. Nodes expiring within the number of days in the '" +
		WarnDaysSetting + "' setting are reported by check."
	return c
}

// Deadline implements the deadline command.
type Deadline struct {
	now func() time.Time
}

var _ shell.Behavior = (*Deadline)(nil)

func (d *Deadline) Execute(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	value := in.Value("$0")
	if value == "check" {
		return shell.Success(d.check(out, env)), nil
	}

	node, ok := targetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	switch value {
	case "reset", "none", "-":
		node.RemoveAttribute(Attribute)
		if !in.Piped {
			out.Printf("Deadline of '%s' removed.\n", node.Text())
		}
		return shell.Success(node), nil
	}

	date, err := time.ParseInLocation(commands.DateLayout, value, time.UTC)
	if err != nil {
		out.SetColor(shell.ColorYellow)
		out.Printf("Unable to parse date '%s'. Required format: 'dd.MM.yyyy'.\n", value)
		return shell.Failure(nil), nil
	}

	node.SetAttribute(Attribute, strconv.FormatInt(epochMillis(date), 10))
	if !in.Piped {
		out.SetColor(shell.ColorGreen)
		out.Println("Deadline successfully added.")
	}
	return shell.Success(node), nil
}

// targetNode prefers the node operand over a piped node, the first operand
// being the date.
func targetNode(out shell.Sink, env shell.Env, in *shell.Input) (*tree.Node, bool) {
	if in.Node != nil {
		return in.Node, true
	}
	return commands.TargetNode(out, env, &shell.Input{Data: in.Data})
}

type expiredNode struct {
	node    *tree.Node
	expires time.Time
}

func (d *Deadline) check(out shell.Sink, env shell.Env) []*tree.Node {
	warnDays := defaultWarnDays
	if value, ok := env.Setting(WarnDaysSetting); ok {
		if days, err := strconv.Atoi(value); err == nil && days >= 0 {
			warnDays = days
		}
	}

	now := d.now()
	warnAfter := now.Add(time.Duration(warnDays) * 24 * time.Hour)

	var expired, expiring []expiredNode
	t := env.Tree()
	t.Walk(t.Root(), func(n *tree.Node) bool {
		value, ok := n.Attribute(Attribute)
		if !ok {
			return true
		}
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return true
		}
		expires := time.Unix(0, ms*int64(time.Millisecond)).UTC()
		switch {
		case expires.Before(now):
			expired = append(expired, expiredNode{n, expires})
		case expires.Before(warnAfter):
			expiring = append(expiring, expiredNode{n, expires})
		}
		return true
	})

	out.Println("Checking for expired nodes...")
	out.Printf("Check completed - %d expired node(s) found, %d node(s) will expire during the next %d days.\n",
		len(expired), len(expiring), warnDays)

	printList := func(title string, color shell.Color, nodes []expiredNode) {
		if len(nodes) == 0 {
			return
		}
		out.Println(title)
		out.SetColor(color)
		for _, e := range nodes {
			out.Printf("    %s (%s)\n", e.node.String(), e.expires.Format(commands.DateLayout))
		}
		out.SetColor(shell.ColorReset)
	}
	printList("Expired:", shell.ColorRed, expired)
	printList("Expiring soon:", shell.ColorYellow, expiring)

	nodes := make([]*tree.Node, len(expired))
	for i, e := range expired {
		nodes[i] = e.node
	}
	return nodes
}

func epochMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
