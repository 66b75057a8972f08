// Package tree holds the node tree that shell commands browse and modify.
package tree

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// AttrCreated holds the creation time of a node in epoch milliseconds.
	AttrCreated = "created"
	// AttrModified holds the last modification time in epoch milliseconds.
	AttrModified = "modified"

	// Separator splits node names in a path.
	Separator = "/"
)

var (
	// ErrNotFound is returned when a path doesn't resolve to a node.
	ErrNotFound = errors.New("node does not exist")
	// ErrRoot is returned for operations that can't be applied to the root.
	ErrRoot = errors.New("operation not permitted on the root node")
)

// Node is a single entry in the tree.
type Node struct {
	ID   int
	text string

	attributes map[string]string
	children   []*Node
	parent     *Node
	tree       *Tree
}

// Tree is a rooted tree of nodes with a selection cursor. It is safe for
// concurrent use.
type Tree struct {
	mu       sync.RWMutex
	root     *Node
	selected *Node
	nextID   int
	now      func() time.Time
}

// New creates an empty tree, timeSource stamps node creation and
// modification. If nil, time.Now is used.
func New(timeSource func() time.Time) *Tree {
	if timeSource == nil {
		timeSource = time.Now
	}
	t := &Tree{now: timeSource}
	t.root = &Node{ID: 0, attributes: make(map[string]string), tree: t}
	t.nextID = 1
	t.selected = t.root
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Selected returns the currently selected node.
func (t *Tree) Selected() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selected
}

// Select changes the selected node.
func (t *Tree) Select(n *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n == nil {
		n = t.root
	}
	t.selected = n
}

func (t *Tree) stamp() string {
	return strconv.FormatInt(t.now().UnixNano()/int64(time.Millisecond), 10)
}

// Add creates a new child of parent with the given text.
func (t *Tree) Add(parent *Node, text string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if parent == nil {
		parent = t.root
	}

	ts := t.stamp()
	n := &Node{
		ID:   t.nextID,
		text: text,
		attributes: map[string]string{
			AttrCreated:  ts,
			AttrModified: ts,
		},
		parent: parent,
		tree:   t,
	}
	t.nextID++
	parent.children = append(parent.children, n)
	return n
}

// Remove detaches the node and its subtree. If the selection was inside the
// removed subtree it moves to the removed node's parent.
func (t *Tree) Remove(n *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n == nil || n.parent == nil {
		return ErrRoot
	}

	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}

	for s := t.selected; s != nil; s = s.parent {
		if s == n {
			t.selected = n.parent
			break
		}
	}
	n.parent = nil
	return nil
}

// NodeByPath resolves a path. Absolute paths start at the root, all others
// are relative to the selected node. "." and ".." are supported.
func (t *Tree) NodeByPath(path string) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cur := t.selected
	if strings.HasPrefix(path, Separator) {
		cur = t.root
	}

	for _, part := range strings.Split(path, Separator) {
		switch part {
		case "", ".":
			continue
		case "..":
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		}

		next := cur.childByText(part)
		if next == nil {
			return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
		}
		cur = next
	}
	return cur, nil
}

// ResolveNode implements the shell's node resolver.
func (t *Tree) ResolveNode(path string) (*Node, error) {
	return t.NodeByPath(path)
}

// Path returns the absolute path of the node.
func (t *Tree) Path(n *Node) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var parts []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.text)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return Separator + strings.Join(parts, Separator)
}

// Sort orders the children of n by their text.
func (t *Tree) Sort(n *Node, recursive bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sortChildren(n, recursive)
}

func sortChildren(n *Node, recursive bool) {
	sort.SliceStable(n.children, func(i, j int) bool {
		return strings.ToLower(n.children[i].text) < strings.ToLower(n.children[j].text)
	})
	if recursive {
		for _, c := range n.children {
			sortChildren(c, true)
		}
	}
}

// Walk calls fn for n and every node below it in depth first order. Walking
// stops early if fn returns false. The set of nodes is captured before fn is
// first called so fn may modify the tree.
func (t *Tree) Walk(n *Node, fn func(*Node) bool) {
	t.mu.RLock()
	var nodes []*Node
	collect(n, &nodes)
	t.mu.RUnlock()

	for _, node := range nodes {
		if !fn(node) {
			return
		}
	}
}

func collect(n *Node, out *[]*Node) {
	*out = append(*out, n)
	for _, c := range n.children {
		collect(c, out)
	}
}

func (n *Node) childByText(text string) *Node {
	for _, c := range n.children {
		if c.text == text {
			return c
		}
	}
	return nil
}

func (n *Node) touch() {
	if n.parent != nil {
		n.attributes[AttrModified] = n.tree.stamp()
	}
}

// Text returns the display name of the node.
func (n *Node) Text() string {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.text
}

// SetText renames the node.
func (n *Node) SetText(text string) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.text = text
	n.touch()
}

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.parent
}

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// ChildAt returns the child with the given index.
func (n *Node) ChildAt(i int) (*Node, error) {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	if i < 0 || i >= len(n.children) {
		return nil, fmt.Errorf("index %d: %w", i, ErrNotFound)
	}
	return n.children[i], nil
}

// Attribute gets an attribute value and whether it exists.
func (n *Node) Attribute(name string) (string, bool) {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	v, ok := n.attributes[name]
	return v, ok
}

// SetAttribute sets an attribute and updates the modification time.
func (n *Node) SetAttribute(name, value string) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.attributes[name] = value
	n.touch()
}

// RemoveAttribute deletes an attribute, returning false if it didn't exist.
func (n *Node) RemoveAttribute(name string) bool {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if _, ok := n.attributes[name]; !ok {
		return false
	}
	delete(n.attributes, name)
	n.touch()
	return true
}

// Attributes returns the sorted attribute names.
func (n *Node) Attributes() []string {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	var out []string
	for k := range n.attributes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.tree.Path(n)
}

// Find returns the nodes below from (excluding from itself) that match.
func (t *Tree) Find(from *Node, match func(*Node) bool) []*Node {
	if from == nil {
		from = t.root
	}
	var out []*Node
	t.Walk(from, func(n *Node) bool {
		if n != from && match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
