package shell

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var aliasPattern = regexp.MustCompile(`^([a-z0-9-_]+) *= *(.+)$`)

// Command pairs a contract with its behavior.
type Command struct {
	Contract *Contract
	Behavior Behavior
}

// Registry maps command names to commands and holds the alias table.
//
// The registry is filled at startup and by modules, after that it's only
// read by sessions.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command. The contract is validated and names must be
// unique.
func (r *Registry) Register(contract *Contract, behavior Behavior) error {
	if contract == nil || behavior == nil {
		return fmt.Errorf("nil contract or behavior")
	}
	if err := contract.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[contract.Name]; ok {
		return fmt.Errorf("duplicate command %q", contract.Name)
	}

	for _, def := range contract.Aliases {
		name, value, err := ParseAlias(def)
		if err != nil {
			return fmt.Errorf("%s: %w", contract.Name, err)
		}
		r.aliases[name] = value
	}

	r.commands[contract.Name] = Command{Contract: contract, Behavior: behavior}
	return nil
}

// MustRegister is like Register but panics on error, it's intended for
// built-in commands.
func (r *Registry) MustRegister(contract *Contract, behavior Behavior) {
	if err := r.Register(contract, behavior); err != nil {
		panic(err)
	}
}

// Lookup finds a command by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the sorted command names.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name := range r.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseAlias splits a definition in the form "name = value".
func ParseAlias(definition string) (name, value string, err error) {
	m := aliasPattern.FindStringSubmatch(definition)
	if m == nil {
		return "", "", fmt.Errorf("invalid alias definition: %q", definition)
	}
	return m[1], m[2], nil
}

// AddAlias maps name to the command text value.
func (r *Registry) AddAlias(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[name] = value
}

// Alias returns the value of an alias.
func (r *Registry) Alias(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.aliases[name]
	return v, ok
}

// Aliases returns the sorted alias names.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name := range r.aliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
