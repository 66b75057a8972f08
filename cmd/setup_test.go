package cmd

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/josephlewis42/keyshell/core/config"
	"github.com/josephlewis42/keyshell/core/console"
	"github.com/josephlewis42/keyshell/core/logger"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	cfg := config.Default()
	env, err := setup(cfg, true, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer env.Close()

	for _, name := range []string{"echo", "find", "deadline", "launch"} {
		_, ok := env.Registry.Lookup(name)
		assert.True(t, ok, name)
	}
	value, ok := env.Registry.Alias("ll")
	assert.True(t, ok)
	assert.Equal(t, "ls --long", value)

	_, err = env.Tree.NodeByPath("/Servers/db")
	assert.NoError(t, err)

	out := &bytes.Buffer{}
	session := shell.NewSession(env.Registry, console.NewApp(cfg, env.Tree), console.NewWriterSink(out, false),
		shell.WithRecorder(env.Events.NewSession()))
	_, err = session.Run("cd /Servers; launch ssh db --dry-run")
	require.NoError(t, err)
	assert.Equal(t, "/Servers\nssh postgres@db.example.com\n", out.String())

	fd, err := cfg.ReadEventLog()
	require.NoError(t, err)
	defer fd.Close()

	var report logger.Report
	require.NoError(t, logger.ReadJSONLinesLog(fd, report.Update))
	assert.Equal(t, 1, report.Dispatch.States.Count("SUCCESS"))
	assert.Equal(t, 1, report.Command.CommandNames.Count("select"))
	assert.Equal(t, 1, report.Command.CommandNames.Count("launch"))
}

func TestNewRegistryBadModule(t *testing.T) {
	cfg := config.Default()
	cfg.Modules = []string{"missing"}
	_, err := newRegistry(cfg)
	assert.Error(t, err)
}

func TestBuildReport(t *testing.T) {
	events := &bytes.Buffer{}
	sessionLogger := logger.NewJSONLinesLogRecorder(events).NewSession()
	sessionLogger.Record(logger.EventLogin, map[string]interface{}{"username": "alice"})
	sessionLogger.Record(shell.EventDispatch, map[string]interface{}{"line": "ls", "state": "SUCCESS"})

	for _, kind := range []string{"report", "bugs", "interactions"} {
		report, err := buildReport(strings.NewReader(events.String()), kind)
		assert.NoError(t, err, kind)
		assert.NotNil(t, report, kind)
	}

	_, err := buildReport(strings.NewReader(""), "everything")
	assert.EqualError(t, err, `unknown report kind "everything"`)
}
