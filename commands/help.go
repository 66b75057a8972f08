package commands

import (
	"github.com/josephlewis42/keyshell/core/shell"
)

func helpContract() *shell.Contract {
	return shell.NewContract("help", "Displays a list of all possible commands.").CallableEmpty()
}

func helpBehavior(reg *shell.Registry) shell.Behavior {
	return shell.BehaviorFunc(func(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
		out.Println("Available commands:")
		out.Println()
		for _, name := range reg.Commands() {
			out.Printf("    %s\n", name)
		}

		if aliases := reg.Aliases(); len(aliases) > 0 {
			out.Println()
			out.Println("Active alias mappings:")
			out.Println()
			for _, name := range aliases {
				value, _ := reg.Alias(name)
				out.Printf("    %s -> %s\n", name, value)
			}
		}
		return shell.Success(nil), nil
	})
}

func manContract() *shell.Contract {
	c := shell.NewContract("man", "Displays the manual of a shell command.").
		WithOperands(shell.Operands{Count: 1, NodeAt: shell.NoNode, Description: "COMMAND_NAME"})
	c.PipeOut = "string"
	c.Examples = []string{"man find"}
	return c
}

func manBehavior(reg *shell.Registry) shell.Behavior {
	return shell.BehaviorFunc(func(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
		name := in.Value("$0")

		if cmd, ok := reg.Lookup(name); ok {
			manual := shell.Manual(cmd.Contract)
			if !in.Piped {
				out.Print(manual)
			}
			return shell.Success(manual), nil
		}

		if value, ok := reg.Alias(name); ok {
			text := name + " is an alias for '" + value + "'"
			if !in.Piped {
				out.Println(text)
			}
			return shell.Success(text), nil
		}

		errorf(out, "No manual entry for %s\n", name)
		return shell.Failure(nil), nil
	})
}
