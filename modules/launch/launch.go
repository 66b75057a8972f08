// Package launch runs external programs configured per node type, for
// example an ssh client for a server node.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/keyshell/commands"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
)

// SettingPrefix is prepended to profile names to get the settings key
// holding the command template.
const SettingPrefix = "launch."

// ExecFunc starts argv and waits for it to exit.
type ExecFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) error

// Launcher implements the launch command.
type Launcher struct {
	Exec ExecFunc
	// Timeout kills the program after the duration, zero waits forever.
	Timeout time.Duration
}

var _ shell.Behavior = (*Launcher)(nil)

// Register adds the launch command, programs are run with os/exec.
func Register(reg *shell.Registry) error {
	return reg.Register(Contract(), &Launcher{Exec: execCommand})
}

// Contract describes the launch command.
func Contract() *shell.Contract {
	c := shell.NewContract("launch", "Starts an external program for a tree node.").
		WithNodeOperand(2, 1, true).
		WithFlag("--dry-run", "print the command line instead of running it", "-n").
		CallableEmpty()
	c.Operands.Description = "[profile] {tree node}"
	c.PipeIn = "TreeNode"
	c.PipeOut = "command line as a list of strings"
	c.Examples = []string{"launch ssh /Servers/web", "launch ping --dry-run", `config --set launch.ping "ping -c 1 \${host}"`}
	c.Note = "Profiles are settings named '" + SettingPrefix + "PROFILE'. ${name} in a profile is replaced " +
		"by the node attribute name, the settings value name, ${text} or ${path}. Without arguments the profiles are listed."
	return c
}

func (l *Launcher) Execute(out shell.Sink, env shell.Env, in *shell.Input) (shell.Output, error) {
	if !in.Has("$0") {
		listProfiles(out, env)
		return shell.Success(nil), nil
	}

	profile := in.Value("$0")
	template, ok := env.Setting(SettingPrefix + profile)
	if !ok {
		out.SetColor(shell.ColorYellow)
		out.Printf("Unknown launch profile '%s'.\n", profile)
		return shell.Failure(nil), nil
	}

	node := in.Node
	if node == nil {
		if node, ok = commands.TargetNode(out, env, &shell.Input{Data: in.Data}); !ok {
			return shell.Failure(nil), nil
		}
	}

	argv, err := CommandLine(template, node, env)
	if err != nil {
		out.SetColor(shell.ColorRed)
		out.Println(err)
		return shell.Failure(nil), nil
	}

	if in.Has("--dry-run") {
		if !in.Piped {
			out.Println(quote(argv))
		}
		return shell.Success(argv), nil
	}

	ctx := context.Background()
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	w := &sinkWriter{out: out}
	if err := l.Exec(ctx, argv, w, w); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.SetColor(shell.ColorYellow)
			out.Printf("%s exited with code %d\n", argv[0], exitErr.ExitCode())
			return shell.Output{ExitCode: exitErr.ExitCode(), Data: argv}, nil
		}
		return shell.Failure(nil), fmt.Errorf("launching %s: %w", argv[0], err)
	}
	return shell.Success(argv), nil
}

// CommandLine expands the variables in template and splits it into argv.
func CommandLine(template string, node *tree.Node, env shell.Env) ([]string, error) {
	var missing []string
	expanded := shell.ExpandVariables(template, func(name string) (string, bool) {
		if value, ok := lookup(name, node, env); ok {
			return value, true
		}
		missing = append(missing, name)
		return "", false
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("undefined variable(s): %s", strings.Join(missing, ", "))
	}

	argv, err := shlex.Split(expanded, true)
	if err != nil {
		return nil, fmt.Errorf("invalid command line %q: %w", expanded, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command line")
	}
	return argv, nil
}

func lookup(name string, node *tree.Node, env shell.Env) (string, bool) {
	if node != nil {
		if value, ok := node.Attribute(name); ok {
			return value, true
		}
		switch name {
		case "text":
			return node.Text(), true
		case "path":
			return node.String(), true
		}
	}
	return env.Setting(name)
}

func listProfiles(out shell.Sink, env shell.Env) {
	var found bool
	for _, key := range env.Settings() {
		if !strings.HasPrefix(key, SettingPrefix) {
			continue
		}
		if !found {
			out.Println("Launch profiles:")
			found = true
		}
		template, _ := env.Setting(key)
		out.Printf("    %s: %s\n", strings.TrimPrefix(key, SettingPrefix), template)
	}
	if !found {
		out.Printf("No launch profiles configured, add settings named '%sPROFILE'.\n", SettingPrefix)
	}
}

func quote(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\"'\\") {
			arg = strconv.Quote(arg)
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}

func execCommand(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

type sinkWriter struct {
	out shell.Sink
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	w.out.Print(string(p))
	return len(p), nil
}
