package shell

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"testing"

	"github.com/josephlewis42/keyshell/core/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferSink struct {
	bytes.Buffer
	colors []Color
}

func (b *bufferSink) Print(a ...interface{})                 { fmt.Fprint(b, a...) }
func (b *bufferSink) Println(a ...interface{})               { fmt.Fprintln(b, a...) }
func (b *bufferSink) Printf(format string, a ...interface{}) { fmt.Fprintf(b, format, a...) }
func (b *bufferSink) SetColor(c Color)                       { b.colors = append(b.colors, c) }

type mapEnv struct {
	tree     *tree.Tree
	settings map[string]string
}

func newMapEnv() *mapEnv {
	return &mapEnv{tree: tree.New(nil), settings: make(map[string]string)}
}

func (e *mapEnv) Tree() *tree.Tree { return e.tree }

func (e *mapEnv) Setting(key string) (string, bool) {
	v, ok := e.settings[key]
	return v, ok
}

func (e *mapEnv) SetSetting(key, value string) { e.settings[key] = value }

func (e *mapEnv) DeleteSetting(key string) bool {
	_, ok := e.settings[key]
	delete(e.settings, key)
	return ok
}

func (e *mapEnv) Settings() []string {
	var out []string
	for k := range e.settings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *mapEnv) Prompt(question string) (string, error) {
	return "", errors.New("no input")
}

type memoryRecorder struct {
	events []string
	fields []map[string]interface{}
}

func (m *memoryRecorder) Record(event string, fields map[string]interface{}) error {
	m.events = append(m.events, event)
	m.fields = append(m.fields, fields)
	return nil
}

// testRegistry holds trivial echo and tac commands plus a few for failure
// modes.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()

	echo := NewContract("echo", "prints its arguments").
		WithOperands(Operands{NodeAt: NoNode, Variadic: true}).
		CallableEmpty()
	reg.MustRegister(echo, BehaviorFunc(func(out Sink, env Env, in *Input) (Output, error) {
		var words []string
		for i := 0; in.Has(Positional(i)); i++ {
			words = append(words, in.Value(Positional(i)))
		}
		if s, ok := in.Data.(string); ok {
			words = append(words, s)
		}
		text := strings.Join(words, " ")
		if !in.Piped {
			out.Println(text)
		}
		return Success(text), nil
	}))

	tac := NewContract("tac", "reverses words").CallableEmpty()
	reg.MustRegister(tac, BehaviorFunc(func(out Sink, env Env, in *Input) (Output, error) {
		s, _ := in.Data.(string)
		words := strings.Fields(s)
		for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
			words[i], words[j] = words[j], words[i]
		}
		text := strings.Join(words, " ")
		if !in.Piped {
			out.Println(text)
		}
		return Success(text), nil
	}))

	reg.MustRegister(NewContract("false", "").CallableEmpty(), BehaviorFunc(func(out Sink, env Env, in *Input) (Output, error) {
		return Failure(nil), nil
	}))

	reg.MustRegister(NewContract("boom", "").CallableEmpty(), BehaviorFunc(func(out Sink, env Env, in *Input) (Output, error) {
		out.SetColor(ColorRed)
		panic("kaboom")
	}))

	reg.MustRegister(NewContract("fail", "").CallableEmpty(), BehaviorFunc(func(out Sink, env Env, in *Input) (Output, error) {
		return Failure(nil), errors.New("broken")
	}))

	return reg
}

func newTestSession(t *testing.T) (*Session, *bufferSink, *mapEnv) {
	t.Helper()
	sink := &bufferSink{}
	env := newMapEnv()
	return NewSession(testRegistry(t), env, sink), sink, env
}

func TestSessionScenario(t *testing.T) {
	s, sink, _ := newTestSession(t)

	res, err := s.Run("echo hello world | tac")
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, 2, res.Executed)
	assert.Equal(t, "world hello", res.Last.Data)

	res, err = s.Run("echo hello && echo world")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Executed)

	assert.Equal(t, "world hello\nhello\nworld\n", sink.String())
}

func TestSessionChaining(t *testing.T) {
	cases := map[string]struct {
		line     string
		output   string
		executed int
	}{
		"sequence runs after failure":  {line: "false; echo x", output: "x\n", executed: 2},
		"and stops after failure":      {line: "false && echo x", output: "", executed: 1},
		"and continues after success":  {line: "echo a && echo b", output: "a\nb\n", executed: 2},
		"short circuit skips the rest": {line: "false && echo a; echo b", output: "", executed: 1},
		"pipe then sequence":           {line: "echo a b | tac; echo c", output: "b a\nc\n", executed: 3},
		"unpiped input is empty":       {line: "echo a; tac", output: "a\n\n", executed: 2},
		"trailing pipe prints":         {line: "echo a |", output: "a\n", executed: 1},
		"empty line":                   {line: "", output: "", executed: 0},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s, sink, _ := newTestSession(t)

			res, err := s.Run(tc.line)
			require.NoError(t, err)
			assert.Equal(t, StateSuccess, res.State)
			assert.Equal(t, StateSuccess, s.State())
			assert.Equal(t, tc.executed, res.Executed)
			assert.Equal(t, tc.output, sink.String())
		})
	}
}

func TestSessionPipeWiring(t *testing.T) {
	reg := testRegistry(t)
	var received interface{}
	reg.MustRegister(NewContract("capture", "").CallableEmpty(), BehaviorFunc(func(out Sink, env Env, in *Input) (Output, error) {
		received = in.Data
		return Success(nil), nil
	}))

	s := NewSession(reg, newMapEnv(), &bufferSink{})
	_, err := s.Run("echo payload | capture")
	require.NoError(t, err)
	assert.Equal(t, "payload", received)
}

func TestSessionErrors(t *testing.T) {
	cases := map[string]struct {
		line     string
		kind     string
		executed int
		output   string
	}{
		"parse error":       {line: `echo "a`, kind: "parse"},
		"unknown command":   {line: "echo a; nope", kind: "violation"},
		"violation":         {line: "false x", kind: "violation"},
		"violation midway":  {line: "echo a; false x; echo b", kind: "violation", executed: 1, output: "a\n"},
		"execution error":   {line: "fail; echo a", kind: "execution", executed: 1},
		"panic":             {line: "echo a; boom; echo b", kind: "execution", executed: 2, output: "a\n"},
		"error after pipe":  {line: "echo a | fail", kind: "execution", executed: 2},
		"no error":          {line: "echo a", kind: ""},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s, sink, _ := newTestSession(t)

			res, err := s.Run(tc.line)
			assert.Equal(t, tc.kind, ErrorKind(err))
			if tc.kind == "" {
				return
			}
			assert.Equal(t, StateAborted, res.State)
			assert.Equal(t, StateAborted, s.State())
			assert.Equal(t, tc.executed, res.Executed)
			assert.Equal(t, tc.output, sink.String())
		})
	}
}

func TestSessionUnknownCommandRunsNothing(t *testing.T) {
	s, sink, _ := newTestSession(t)

	_, err := s.Run("echo a; nope")

	var violation *ContractViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "nope", violation.Command)
	assert.Empty(t, sink.String())
}

func TestSessionResetsColor(t *testing.T) {
	s, sink, _ := newTestSession(t)

	_, err := s.Run("boom")
	require.Error(t, err)
	assert.Equal(t, []Color{ColorRed, ColorReset}, sink.colors)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Error(), "kaboom")
}

func TestSessionExit(t *testing.T) {
	cases := map[string]struct {
		line   string
		exit   bool
		output string
	}{
		"exit":                  {line: "exit", exit: true},
		"exit after command":    {line: "echo a; exit; echo b", exit: true, output: "a\n"},
		"exit skipped":          {line: "false && exit", exit: false},
		"unknown after exit ok": {line: "exit; nope", exit: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s, sink, _ := newTestSession(t)

			res, err := s.Run(tc.line)
			if tc.exit {
				assert.ErrorIs(t, err, ErrExit)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, StateSuccess, res.State)
			assert.Equal(t, tc.output, sink.String())
		})
	}
}

func TestSessionAliases(t *testing.T) {
	reg := testRegistry(t)
	reg.AddAlias("hi", `echo "hello there"`)
	reg.AddAlias("bad", "echo a; echo b")

	s := NewSession(reg, newMapEnv(), &bufferSink{})

	res, err := s.Run("hi bob | tac")
	require.NoError(t, err)
	assert.Equal(t, "bob there hello", res.Last.Data)

	_, err = s.Run("bad")
	assert.Equal(t, "violation", ErrorKind(err))
}

func TestSessionVariables(t *testing.T) {
	s, sink, env := newTestSession(t)
	env.settings["user"] = "alice"
	env.settings["host"] = "example.com"
	node := env.tree.Add(nil, "server")
	node.SetAttribute("host", "10.0.0.1")

	_, err := s.Run("echo ${user}@${host} ${missing}")
	require.NoError(t, err)

	env.tree.Select(node)
	_, err = s.Run(`echo ${user}@${host} \${host}`)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com\nalice@10.0.0.1 ${host}\n", sink.String())
}

func TestSessionVariablesAreNotParsed(t *testing.T) {
	s, sink, env := newTestSession(t)
	node := env.tree.Add(nil, "mail")
	env.tree.Select(node)

	node.SetAttribute("password", "abc;echo INJECTED")
	res, err := s.Run("echo ${password}")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Executed)

	node.SetAttribute("password", `ab"c|d&&e`)
	res, err = s.Run("echo ${password}")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Executed)

	env.settings["motd"] = `say "hi"`
	_, err = s.Run(`echo "${motd}"`)
	require.NoError(t, err)

	assert.Equal(t, "abc;echo INJECTED\nab\"c|d&&e\nsay \"hi\"\n", sink.String())
}

func TestSessionRecordsEvents(t *testing.T) {
	reg := testRegistry(t)
	rec := &memoryRecorder{}
	var logs bytes.Buffer
	s := NewSession(reg, newMapEnv(), &bufferSink{},
		WithRecorder(rec),
		WithLogger(log.New(&logs, "", 0)))

	_, err := s.Run("echo a | tac")
	require.NoError(t, err)
	assert.Equal(t, []string{EventCommand, EventCommand, EventDispatch}, rec.events)
	assert.Equal(t, "SUCCESS", rec.fields[2]["state"])

	rec.events = nil
	_, err = s.Run("false x")
	require.Error(t, err)
	assert.Equal(t, []string{EventViolation, EventDispatch}, rec.events)

	rec.events = nil
	_, err = s.Run("boom")
	require.Error(t, err)
	assert.Equal(t, []string{EventPanic, EventDispatch}, rec.events)
	assert.Contains(t, logs.String(), "kaboom")
}
