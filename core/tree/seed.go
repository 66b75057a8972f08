package tree

// Seed describes a node to create at startup.
type Seed struct {
	Text       string            `json:"text" validate:"required"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []Seed            `json:"children,omitempty" validate:"dive"`
}

// LoadSeed adds the seeded nodes below parent, nil means the root.
func (t *Tree) LoadSeed(parent *Node, seeds []Seed) {
	for _, s := range seeds {
		n := t.Add(parent, s.Text)
		for k, v := range s.Attributes {
			n.SetAttribute(k, v)
		}
		t.LoadSeed(n, s.Children)
	}
}
