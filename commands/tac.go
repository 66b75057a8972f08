package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/keyshell/core/shell"
)

func tacContract() *shell.Contract {
	c := shell.NewContract("tac", "Prints words in reverse order.").
		WithOperands(shell.Operands{NodeAt: shell.NoNode, Variadic: true, Description: "[TEXT...]"}).
		CallableEmpty()
	c.PipeIn = "any"
	c.PipeOut = "string"
	c.Examples = []string{"echo hello world | tac"}
	return c
}

// Tac reverses the words of the piped input or of its arguments.
func Tac(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	var words []string
	if in.Data != nil {
		words = strings.Fields(fmt.Sprint(in.Data))
	} else {
		for i := 0; in.Has(shell.Positional(i)); i++ {
			words = append(words, in.Value(shell.Positional(i)))
		}
	}

	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}

	text := strings.Join(words, " ")
	if !in.Piped {
		out.Println(text)
	}
	return shell.Success(text), nil
}
