package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/keyshell/core/shell"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7][0-7]?[0-7]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

func echoContract() *shell.Contract {
	c := shell.NewContract("echo", "Prints out any data.").
		WithOperands(shell.Operands{NodeAt: shell.NoNode, Variadic: true, Description: "[TEXT...]"}).
		WithFlag("-e", "interpret backslash escapes").
		CallableEmpty()
	c.PipeIn = "any"
	c.PipeOut = "string"
	c.Examples = []string{"echo hello world", "get /server host | echo connecting to"}
	return c
}

// Echo joins its arguments and the piped input.
func Echo(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	var words []string
	for i := 0; in.Has(shell.Positional(i)); i++ {
		arg := in.Value(shell.Positional(i))
		if in.Has("-e") {
			arg = unescape(arg)
		}
		words = append(words, arg)
	}
	if in.Data != nil {
		words = append(words, fmt.Sprint(in.Data))
	}

	text := strings.Join(words, " ")
	if !in.Piped && len(words) > 0 {
		out.Println(text)
	}
	return shell.Success(text), nil
}
