package shell

import (
	"fmt"
	"regexp"
)

// NoNode is the Operands.NodeAt value for commands without a node operand.
const NoNode = -1

var commandNamePattern = regexp.MustCompile(`^[a-z0-9-_]+$`)

// Option describes a named switch.
type Option struct {
	// Name is the canonical name the values are stored under.
	Name    string
	Aliases []string
	// Params is the number of tokens following the switch that belong to it.
	Params int
	// Defaults are used when the switch isn't given.
	Defaults []string
	// Required options must be supplied.
	Required    bool
	Description string
}

// Operands describes the positional arguments.
type Operands struct {
	// Count is the number of positional arguments.
	Count int
	// NodeAt is the index of the positional argument holding a tree node
	// path or NoNode.
	NodeAt int
	// NodeOptional allows the node path to be left out, the remaining
	// positional arguments keep their index.
	NodeOptional bool
	// Variadic makes Count a minimum.
	Variadic bool
	// Description replaces the generated operand text in manuals.
	Description string
}

// Contract is the declarative description of a command's arguments.
type Contract struct {
	Name        string
	Description string
	Options     []Option
	Operands    Operands
	// AllowEmpty allows calling the command without any arguments.
	AllowEmpty bool

	// Aliases are definitions in the form "name = value" registered along
	// with the command.
	Aliases []string
	// PipeIn and PipeOut document the data types accepted and produced.
	PipeIn   string
	PipeOut  string
	Examples []string
	Note     string
}

// NewContract creates a contract with no operands.
func NewContract(name, description string) *Contract {
	return &Contract{
		Name:        name,
		Description: description,
		Operands:    Operands{NodeAt: NoNode},
	}
}

// WithOption adds an option.
func (c *Contract) WithOption(opt Option) *Contract {
	c.Options = append(c.Options, opt)
	return c
}

// WithFlag adds an option without parameters.
func (c *Contract) WithFlag(name, description string, aliases ...string) *Contract {
	return c.WithOption(Option{Name: name, Aliases: aliases, Description: description})
}

// WithOperands sets the positional arguments.
func (c *Contract) WithOperands(ops Operands) *Contract {
	c.Operands = ops
	return c
}

// WithNodeOperand sets count operands where the one at index nodeAt is a
// tree node path.
func (c *Contract) WithNodeOperand(count, nodeAt int, optional bool) *Contract {
	c.Operands = Operands{Count: count, NodeAt: nodeAt, NodeOptional: optional}
	return c
}

// CallableEmpty allows calling the command without arguments.
func (c *Contract) CallableEmpty() *Contract {
	c.AllowEmpty = true
	return c
}

// Validate checks the contract for errors the binder can't recover from.
func (c *Contract) Validate() error {
	if !commandNamePattern.MatchString(c.Name) {
		return fmt.Errorf("command name %q is not valid", c.Name)
	}

	ops := c.Operands
	if ops.Count < 0 {
		return fmt.Errorf("%s: negative operand count", c.Name)
	}
	if ops.NodeAt != NoNode && (ops.NodeAt < 0 || ops.NodeAt >= ops.Count) {
		return fmt.Errorf("%s: node operand %d out of range", c.Name, ops.NodeAt)
	}

	seen := make(map[string]bool)
	for _, opt := range c.Options {
		if opt.Params < 0 {
			return fmt.Errorf("%s: option %q has negative parameter count", c.Name, opt.Name)
		}
		if len(opt.Defaults) > 0 && len(opt.Defaults) != opt.Params {
			return fmt.Errorf("%s: option %q has %d defaults for %d parameters", c.Name, opt.Name, len(opt.Defaults), opt.Params)
		}
		if opt.Required && len(opt.Defaults) > 0 {
			return fmt.Errorf("%s: required option %q can't have defaults", c.Name, opt.Name)
		}
		for _, name := range append([]string{opt.Name}, opt.Aliases...) {
			if seen[name] {
				return fmt.Errorf("%s: duplicate option name %q", c.Name, name)
			}
			seen[name] = true
		}
	}
	return nil
}

// option finds the option matching a token by name or alias.
func (c *Contract) option(token string) (*Option, bool) {
	for i := range c.Options {
		opt := &c.Options[i]
		if opt.Name == token {
			return opt, true
		}
		for _, alias := range opt.Aliases {
			if alias == token {
				return opt, true
			}
		}
	}
	return nil, false
}
