// Package modules holds optional command sets that can be enabled in the
// configuration.
package modules

import (
	"fmt"
	"sort"

	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/modules/deadline"
	"github.com/josephlewis42/keyshell/modules/launch"
)

// Module is a named set of commands registered at startup.
type Module struct {
	Name        string
	Description string
	Register    func(reg *shell.Registry) error
}

var catalog = []Module{
	{
		Name:        "deadline",
		Description: "Adds expiration dates to tree nodes and warns about expired ones.",
		Register:    deadline.Register,
	},
	{
		Name:        "launch",
		Description: "Runs external programs built from node attributes, e.g. ssh sessions.",
		Register:    launch.Register,
	},
}

// Catalog returns the available modules sorted by name.
func Catalog() []Module {
	out := append([]Module(nil), catalog...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Lookup finds a module by name.
func Lookup(name string) (Module, bool) {
	for _, m := range catalog {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// Enable registers the named modules with reg.
func Enable(reg *shell.Registry, names []string) error {
	for _, name := range names {
		m, ok := Lookup(name)
		if !ok {
			return fmt.Errorf("unknown module %q", name)
		}
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("module %q: %w", name, err)
		}
	}
	return nil
}
