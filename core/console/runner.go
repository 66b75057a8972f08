package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/spf13/afero"
)

// Runner runs scripts line by line in a session.
type Runner struct {
	Session *shell.Session
	// Errors receives a description of each failed line.
	Errors *WriterSink
	// FailFast stops at the first failed line.
	FailFast bool
}

// LineError is a failure of a single script line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// RunScript runs the script at path in fsys.
func (r *Runner) RunScript(fsys afero.Fs, path string) error {
	fd, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := r.RunLines(fd); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// RunLines runs each line read from in. Blank lines and lines starting with
// # are skipped. Reaching exit ends the script.
func (r *Runner) RunLines(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	var (
		lineNo int
		failed []*LineError
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		_, err := r.Session.Run(line)
		switch {
		case err == nil:
			continue
		case errors.Is(err, shell.ErrExit):
			return summarize(failed)
		}

		lineErr := &LineError{Line: lineNo, Err: err}
		if r.Errors != nil {
			r.Errors.Errorln(lineErr)
		}
		if r.FailFast {
			return lineErr
		}
		failed = append(failed, lineErr)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return summarize(failed)
}

func summarize(failed []*LineError) error {
	switch len(failed) {
	case 0:
		return nil
	case 1:
		return failed[0]
	default:
		return fmt.Errorf("%d lines failed, first: %w", len(failed), failed[0])
	}
}
