package commands

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
)

// DateLayout is the format of dates given on the command line.
const DateLayout = "02.01.2006"

func findContract() *shell.Contract {
	c := shell.NewContract("find", "Finds all nodes matching a search pattern.").
		WithNodeOperand(2, 0, true).
		WithFlag("--regex", "treat the pattern as a regular expression", "-r").
		WithFlag("--case-sensitive", "make the search case sensitive, always set with --regex", "-s").
		WithFlag("--text-only", "ignore node attributes", "-t").
		WithFlag("--attributes-only", "ignore the node text", "-a").
		WithFlag("--next", "select the next matching node after the selected one", "-n").
		WithOption(shell.Option{Name: "--attribute-filter", Aliases: []string{"-f"}, Params: 1, Description: "only search attributes whose name matches this regular expression"}).
		WithOption(shell.Option{Name: "--modified", Aliases: []string{"-m"}, Params: 2, Description: "before|at|after DATE"}).
		WithOption(shell.Option{Name: "--created", Aliases: []string{"-c"}, Params: 2, Description: "before|at|after DATE"})
	c.Operands.Description = "{tree node} [search pattern]"
	c.PipeIn = "TreeNode"
	c.PipeOut = "TreeNode list or a single TreeNode when using --next"
	c.Examples = []string{
		`find /Servers "10.0.*"`,
		"find web --next",
		"find / ^db$ --regex --text-only",
		"find / x --modified after 01.01.2024",
	}
	c.Note = "Without --regex, '*' matches any text and the pattern may match anywhere."
	return c
}

var errTextAndAttributesOnly = errors.New("you cannot use --text-only and --attributes-only at the same time")

// nodeMatcher reports whether a node satisfies a search condition.
type nodeMatcher func(*tree.Node) bool

// Find searches the tree for nodes matching a pattern.
func Find(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	matchers, err := findMatchers(in)
	if err != nil {
		errorf(out, "%v\n", err)
		return shell.Failure(nil), nil
	}
	matches := func(n *tree.Node) bool {
		for _, m := range matchers {
			if !m(n) {
				return false
			}
		}
		return true
	}

	t := env.Tree()
	if in.Has("--next") {
		node := findNext(t, matches)
		if node == nil {
			out.Println("No matching node found.")
			return shell.Success(nil), nil
		}
		t.Select(node)
		if !in.Piped {
			out.SetColor(shell.ColorCyan)
			out.Println(node.String())
		}
		return shell.Success(node), nil
	}

	from, ok := TargetNode(out, env, in)
	if !ok {
		return shell.Failure(nil), nil
	}

	found := t.Find(from, matches)
	switch {
	case len(found) == 0:
		out.Println("No matching node found.")
	case !in.Piped:
		out.SetColor(shell.ColorCyan)
		for _, path := range nodePaths(found) {
			out.Println(path)
		}
	}
	return shell.Success(found), nil
}

func findMatchers(in *shell.Input) ([]nodeMatcher, error) {
	if in.Has("--text-only") && in.Has("--attributes-only") {
		return nil, errTextAndAttributesOnly
	}

	text, err := compilePattern(in.Value("$1"), in.Has("--regex"), in.Has("--case-sensitive"))
	if err != nil {
		return nil, err
	}

	var filter *regexp.Regexp
	if in.Has("--attribute-filter") {
		filter, err = regexp.Compile("^(?:" + in.Value("--attribute-filter") + ")$")
		if err != nil {
			return nil, err
		}
	}

	matchers := []nodeMatcher{textMatcher(text, filter, !in.Has("--attributes-only"), !in.Has("--text-only"))}
	for _, attr := range []string{tree.AttrModified, tree.AttrCreated} {
		key := "--" + attr
		if !in.Has(key) {
			continue
		}
		args := in.Get(key)
		m, err := timeMatcher(attr, args[0], args[1])
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// compilePattern builds a regular expression that must match a whole value.
// Simple patterns match anywhere, '*' being a wildcard, and ignore case
// unless caseSensitive is set.
func compilePattern(pattern string, isRegex, caseSensitive bool) (*regexp.Regexp, error) {
	if !isRegex {
		parts := strings.Split(pattern, "*")
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		pattern = ".*" + strings.Join(parts, ".*") + ".*"
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
	}
	return regexp.Compile("^(?s:" + pattern + ")$")
}

func textMatcher(pattern, attrFilter *regexp.Regexp, searchText, searchAttributes bool) nodeMatcher {
	return func(n *tree.Node) bool {
		if searchText && pattern.MatchString(n.Text()) {
			return true
		}
		if !searchAttributes {
			return false
		}
		for _, name := range n.Attributes() {
			if name == tree.AttrCreated || name == tree.AttrModified {
				continue
			}
			if attrFilter != nil && !attrFilter.MatchString(name) {
				continue
			}
			if value, _ := n.Attribute(name); pattern.MatchString(value) {
				return true
			}
		}
		return false
	}
}

func timeMatcher(attr, comparison, date string) (nodeMatcher, error) {
	ref, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("cannot parse date %q, expected dd.MM.yyyy", date)
	}

	stamp := func(n *tree.Node) (time.Time, bool) {
		value, ok := n.Attribute(attr)
		if !ok {
			return time.Time{}, false
		}
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), true
	}

	switch strings.ToLower(comparison) {
	case "before":
		return func(n *tree.Node) bool {
			t, ok := stamp(n)
			return ok && !t.After(ref)
		}, nil
	case "after":
		return func(n *tree.Node) bool {
			t, ok := stamp(n)
			return ok && !t.Before(ref)
		}, nil
	case "at":
		return func(n *tree.Node) bool {
			t, ok := stamp(n)
			return ok && t.Truncate(24*time.Hour).Equal(ref)
		}, nil
	default:
		return nil, fmt.Errorf("unknown comparison %q, use before, at or after", comparison)
	}
}

// findNext returns the first match after the selected node in depth first
// order, wrapping around at the end of the tree. The selected node itself and
// the root are never returned.
func findNext(t *tree.Tree, match nodeMatcher) *tree.Node {
	var order []*tree.Node
	t.Walk(t.Root(), func(n *tree.Node) bool {
		order = append(order, n)
		return true
	})

	start := 0
	selected := t.Selected()
	for i, n := range order {
		if n == selected {
			start = i
			break
		}
	}

	for i := 1; i < len(order); i++ {
		n := order[(start+i)%len(order)]
		if n == t.Root() {
			continue
		}
		if match(n) {
			return n
		}
	}
	return nil
}
