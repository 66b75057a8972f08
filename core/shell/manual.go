package shell

import (
	"fmt"
	"strings"
)

// Usage renders the one line synopsis of a command.
func Usage(c *Contract) string {
	parts := []string{c.Name}

	ops := c.Operands
	switch {
	case ops.Description != "":
		parts = append(parts, ops.Description)
	default:
		for i := 0; i < ops.Count; i++ {
			switch {
			case i == ops.NodeAt && ops.NodeOptional:
				parts = append(parts, "{tree node}")
			case i == ops.NodeAt:
				parts = append(parts, "[tree node]")
			default:
				parts = append(parts, fmt.Sprintf("[argument %d]", i))
			}
		}
		if ops.Variadic {
			parts = append(parts, "...")
		}
	}

	for _, opt := range c.Options {
		synopsis := opt.Name
		for i := 0; i < opt.Params; i++ {
			synopsis += fmt.Sprintf(" <value %d>", i)
		}
		if !opt.Required {
			synopsis = "{" + synopsis + "}"
		}
		parts = append(parts, synopsis)
	}

	return strings.Join(parts, " ")
}

// Manual renders the full help text of a command.
func Manual(c *Contract) string {
	var b strings.Builder

	section := func(title string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(title)
		b.WriteString("\n")
	}
	line := func(indent int, format string, a ...interface{}) {
		b.WriteString(strings.Repeat("    ", indent))
		fmt.Fprintf(&b, format, a...)
		b.WriteString("\n")
	}

	section("NAME")
	if c.Description != "" {
		line(1, "%s - %s", c.Name, c.Description)
	} else {
		line(1, "%s", c.Name)
	}

	section("USAGE")
	line(1, "%s", Usage(c))
	if c.AllowEmpty && c.Operands.Count > 0 {
		line(1, "%s", c.Name)
	}

	if len(c.Options) > 0 {
		section("OPTIONS")
		for _, opt := range c.Options {
			names := append([]string{opt.Name}, opt.Aliases...)
			line(1, "%s", strings.Join(names, ", "))
			if opt.Description != "" {
				line(2, "%s", opt.Description)
			}
			switch {
			case opt.Required:
				line(2, "required")
			case len(opt.Defaults) > 0:
				line(2, "default: %s", strings.Join(opt.Defaults, " "))
			}
		}
	}

	if c.PipeIn != "" || c.PipeOut != "" {
		section("PIPE")
		if c.PipeIn != "" {
			line(1, "input: %s", c.PipeIn)
		}
		if c.PipeOut != "" {
			line(1, "output: %s", c.PipeOut)
		}
	}

	if len(c.Examples) > 0 {
		section("EXAMPLES")
		for _, example := range c.Examples {
			line(1, "%s", example)
		}
	}

	if len(c.Aliases) > 0 {
		section("ALIASES")
		for _, alias := range c.Aliases {
			line(1, "%s", alias)
		}
	}

	if c.Note != "" {
		section("NOTE")
		line(1, "%s", c.Note)
	}

	return b.String()
}
