// Package console hosts shell sessions on terminals and scripts.
package console

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/keyshell/core/shell"
)

// Options configures the terminal a Console runs on.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal and Width describe the terminal, they default to the
	// process' own.
	IsTerminal func() bool
	Width      func() int

	// HistoryFile is an OS path, empty disables history.
	HistoryFile string
	// Prompt is shown before the selected node's path.
	Prompt string
	Color  bool

	Logger         *log.Logger
	SessionOptions []shell.SessionOption
}

// Console is an interactive read-eval loop over a single session.
type Console struct {
	app     *App
	sink    *WriterSink
	session *shell.Session
	rl      *readline.Instance
	logger  *log.Logger

	prompt      string
	promptColor *color.Color
}

// New creates a console and makes it the App's prompter.
func New(registry *shell.Registry, app *App, opts Options) (*Console, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	cfg := &readline.Config{
		Stdin:           readline.NewCancelableStdin(opts.Stdin),
		Stdout:          opts.Stdout,
		Stderr:          opts.Stderr,
		HistoryFile:     opts.HistoryFile,
		FuncGetWidth:    opts.Width,
		FuncIsTerminal:  opts.IsTerminal,
		AutoComplete:    completer(registry),
		InterruptPrompt: "^C",
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Console{
		app:    app,
		sink:   NewWriterSink(rl.Stdout(), opts.Color),
		rl:     rl,
		logger: logger,
		prompt: opts.Prompt,
	}
	if opts.Color {
		c.promptColor = color.New(color.FgGreen, color.Bold)
		c.promptColor.EnableColor()
	}

	sessionOpts := append([]shell.SessionOption{shell.WithLogger(logger)}, opts.SessionOptions...)
	c.session = shell.NewSession(registry, app, c.sink, sessionOpts...)
	app.SetPrompter(c)

	return c, nil
}

func completer(registry *shell.Registry) readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range registry.Commands() {
		items = append(items, readline.PcItem(name))
	}
	for _, name := range registry.Aliases() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// Session returns the session lines are run in.
func (c *Console) Session() *shell.Session {
	return c.session
}

// Sink returns the console's output sink.
func (c *Console) Sink() *WriterSink {
	return c.sink
}

func (c *Console) currentPrompt() string {
	t := c.app.Tree()
	text := fmt.Sprintf("%s:%s", c.prompt, t.Path(t.Selected()))
	if c.promptColor != nil {
		text = c.promptColor.Sprint(text)
	}
	return text + "> "
}

// Prompt asks a question on the terminal, passwords are read without echo
// if the question mentions one.
func (c *Console) Prompt(question string) (string, error) {
	if strings.Contains(strings.ToLower(question), "password") {
		answer, err := c.rl.ReadPassword(question)
		return string(answer), err
	}

	c.rl.SetPrompt(question)
	defer c.rl.SetPrompt(c.currentPrompt())
	return c.rl.Readline()
}

// Run reads and runs lines until the input ends or a line exits the shell.
// Errors from lines are printed and don't end the loop.
func (c *Console) Run() error {
	for {
		c.rl.SetPrompt(c.currentPrompt())
		line, err := c.rl.Readline()

		switch {
		case err == io.EOF:
			return nil

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			return err

		case strings.TrimSpace(line) == "":
			continue
		}

		if _, err := c.session.Run(line); err != nil {
			if errors.Is(err, shell.ErrExit) {
				return nil
			}
			c.logger.Printf("%s: %v", shell.ErrorKind(err), err)
			c.sink.Errorln(err)
		}
	}
}

// Close releases the terminal.
func (c *Console) Close() error {
	return c.rl.Close()
}
