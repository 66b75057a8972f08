package commands

import (
	"strings"

	"github.com/josephlewis42/keyshell/core/shell"
)

func configContract() *shell.Contract {
	c := shell.NewContract("config", "View or modify the settings.").
		WithOption(shell.Option{Name: "--set", Aliases: []string{"-s"}, Params: 2, Description: "[key] [value] add or change a setting"}).
		WithOption(shell.Option{Name: "--delete", Aliases: []string{"-d", "-D"}, Params: 1, Description: "[key] delete a setting"}).
		WithFlag("--print", "print the current settings", "-p").
		CallableEmpty()
	c.Examples = []string{"config --set editor vi", "config --delete editor --print"}
	c.Note = "Values of keys that look like passwords are masked."
	return c
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"password", "pw", "paswd"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

// Config changes and prints the settings. Without options it prints them.
func Config(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	show := in.Has("--print") || len(in.Params) == 0

	if in.Has("--delete") {
		key := in.Value("--delete")
		if !env.DeleteSetting(key) {
			warnf(out, "Settings key '%s' does not exist.\n", key)
			return shell.Failure(nil), nil
		}
	}

	if vals := in.Get("--set"); len(vals) == 2 {
		env.SetSetting(vals[0], vals[1])
	}

	if show {
		for _, key := range env.Settings() {
			value, _ := env.Setting(key)
			switch {
			case isSecretKey(key):
				out.Printf("%s = *****\n", key)
			case strings.Contains(value, "\n"):
				out.Printf("%s = %s\n", key, strings.ReplaceAll(value, "\n", "\n    "))
			default:
				out.Printf("%s = %s\n", key, value)
			}
		}
	}
	return shell.Success(nil), nil
}
