package deadline

import (
	"strconv"
	"time"

	"github.com/josephlewis42/keyshell/commands"
	"github.com/josephlewis42/keyshell/core/shell"
)

func dateconvContract() *shell.Contract {
	c := shell.NewContract("dateconv", "Converts between dates and epoch milliseconds.").
		WithOperands(shell.Operands{Count: 1, NodeAt: shell.NoNode, Description: "[date or epoch milliseconds]"}).
		WithFlag("--date-to-epoch", "convert a dd.MM.yyyy date to epoch milliseconds, the default", "-d2e").
		WithFlag("--epoch-to-date", "convert epoch milliseconds to a date", "-e2d")
	c.Aliases = []string{"date2epoch = dateconv -d2e", "epoch2date = dateconv -e2d"}
	c.PipeOut = "string"
	c.Examples = []string{"dateconv -d2e 31.12.2024", "epoch2date 1735603200000"}
	return c
}

// DateConv converts dates to epoch milliseconds and back.
func DateConv(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	value := in.Value("$0")

	var result string
	if in.Has("--epoch-to-date") {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			out.SetColor(shell.ColorYellow)
			out.Printf("Unable to parse '%s' as epoch milliseconds.\n", value)
			return shell.Failure(nil), nil
		}
		result = time.Unix(0, ms*int64(time.Millisecond)).UTC().Format(commands.DateLayout)
	} else {
		date, err := time.ParseInLocation(commands.DateLayout, value, time.UTC)
		if err != nil {
			out.SetColor(shell.ColorYellow)
			out.Printf("Unable to parse date '%s'. Required format: 'dd.MM.yyyy'.\n", value)
			return shell.Failure(nil), nil
		}
		result = strconv.FormatInt(epochMillis(date), 10)
	}

	if !in.Piped {
		out.Println(result)
	}
	return shell.Success(result), nil
}
