package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/josephlewis42/keyshell/core/shell"
)

var attributes = map[shell.Color]color.Attribute{
	shell.ColorRed:    color.FgRed,
	shell.ColorGreen:  color.FgGreen,
	shell.ColorYellow: color.FgYellow,
	shell.ColorBlue:   color.FgBlue,
	shell.ColorPurple: color.FgMagenta,
	shell.ColorCyan:   color.FgCyan,
	shell.ColorWhite:  color.FgWhite,
}

// WriterSink writes command output to an io.Writer. Color hints are
// rendered as ANSI escapes only if colored is set.
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	colored bool
	current *color.Color
}

var _ shell.Sink = (*WriterSink)(nil)

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer, colored bool) *WriterSink {
	return &WriterSink{w: w, colored: colored}
}

func (s *WriterSink) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		// Fprint leaves out the reset sequence when color.NoColor is set
		// globally, Sprint only looks at the color's own setting.
		text = s.current.Sprint(text)
	}
	io.WriteString(s.w, text)
}

func (s *WriterSink) Print(a ...interface{}) {
	s.write(fmt.Sprint(a...))
}

func (s *WriterSink) Println(a ...interface{}) {
	s.write(fmt.Sprintln(a...))
}

func (s *WriterSink) Printf(format string, a ...interface{}) {
	s.write(fmt.Sprintf(format, a...))
}

func (s *WriterSink) SetColor(c shell.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attr, ok := attributes[c]
	if !s.colored || !ok {
		s.current = nil
		return
	}
	s.current = color.New(attr)
	// Output may go to an SSH channel, don't let the process' own TTY
	// decide.
	s.current.EnableColor()
}

// Errorln prints a line in red.
func (s *WriterSink) Errorln(a ...interface{}) {
	s.SetColor(shell.ColorRed)
	s.Println(a...)
	s.SetColor(shell.ColorReset)
}
