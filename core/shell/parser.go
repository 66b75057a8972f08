package shell

import (
	"fmt"
	"strings"
)

// ExecOption is the relation between a command and the one following it.
type ExecOption int

const (
	// ExecNone runs the next command unconditionally.
	ExecNone ExecOption = iota
	// ExecPipe feeds this command's output data to the next command.
	ExecPipe
	// ExecRequireExit0 runs the next command only if this one exits with 0.
	ExecRequireExit0
)

func (e ExecOption) String() string {
	switch e {
	case ExecNone:
		return "NONE"
	case ExecPipe:
		return "PIPE"
	case ExecRequireExit0:
		return "REQUIRE_EXIT_0"
	default:
		return fmt.Sprintf("ExecOption(%d)", int(e))
	}
}

func execOptionFor(op string) ExecOption {
	switch op {
	case OpPipe:
		return ExecPipe
	case OpAnd:
		return ExecRequireExit0
	default:
		return ExecNone
	}
}

// ParsedCommand is one command of a line.
type ParsedCommand struct {
	Name string
	// Args never contains operators.
	Args []string
	Exec ExecOption
	// Text is the command as it was typed, used in diagnostics.
	Text string
}

// assembler groups tokens into commands.
type assembler struct {
	out []ParsedCommand

	pending bool
	name    string
	args    []string
	raw     []string
}

func (a *assembler) add(tok Token) {
	if tok.IsOperator() {
		// Repeated separators collapse, a leading one is ignored.
		if a.pending {
			a.close(execOptionFor(tok.Text))
		}
		return
	}

	if !a.pending {
		a.pending = true
		a.name = tok.Text
	} else {
		a.args = append(a.args, tok.Text)
	}
	a.raw = append(a.raw, tok.Raw)
}

func (a *assembler) close(exec ExecOption) {
	a.out = append(a.out, ParsedCommand{
		Name: a.name,
		Args: a.args,
		Exec: exec,
		Text: strings.Join(a.raw, " "),
	})

	a.pending = false
	a.name = ""
	a.args = nil
	a.raw = nil
}

func (a *assembler) finish() []ParsedCommand {
	if a.pending {
		a.close(ExecNone)
	}
	return a.out
}

// Assemble builds the command list from a token stream.
func Assemble(tokens []Token) []ParsedCommand {
	var a assembler
	for _, tok := range tokens {
		a.add(tok)
	}
	return a.finish()
}

// Parse tokenizes and assembles a line.
func Parse(line string) ([]ParsedCommand, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	return Assemble(tokens), nil
}
