package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/josephlewis42/keyshell/commands"
	"github.com/josephlewis42/keyshell/core/config"
	"github.com/josephlewis42/keyshell/core/logger"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var discard = log.New(io.Discard, "", 0)

func testConfig(t *testing.T) *config.Configuration {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, config.InitializeFs(fsys, discard))
	cfg, err := config.LoadFs(fsys)
	require.NoError(t, err)
	return cfg
}

func startServer(t *testing.T, cfg *config.Configuration) (string, *lockedBuffer) {
	t.Helper()

	reg := shell.NewRegistry()
	require.NoError(t, commands.RegisterAll(reg))
	tr := tree.New(nil)
	tr.LoadSeed(nil, cfg.Tree)

	events := &lockedBuffer{}
	srv, err := New(cfg, reg, tr, logger.NewJSONLinesLogRecorder(events), discard)
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(l)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
	})

	return l.Addr().String(), events
}

func readReport(t *testing.T, events *lockedBuffer) *logger.Report {
	t.Helper()

	var report logger.Report
	require.NoError(t, logger.ReadJSONLinesLog(strings.NewReader(events.String()), report.Update))
	return &report
}

func dial(addr, user, password string) (*gossh.Client, error) {
	return gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            user,
		Auth:            []gossh.AuthMethod{gossh.Password(password)},
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
	})
}

func TestServerCommand(t *testing.T) {
	cfg := testConfig(t)
	addr, events := startServer(t, cfg)

	client, err := dial(addr, "keyshell", "changeme")
	require.NoError(t, err)
	defer client.Close()

	t.Run("success", func(t *testing.T) {
		sess, err := client.NewSession()
		require.NoError(t, err)
		defer sess.Close()

		out, err := sess.Output("get /Servers/db user | echo user:")
		require.NoError(t, err)
		assert.Equal(t, "user: postgres\n", string(out))
	})

	t.Run("failure exit code", func(t *testing.T) {
		sess, err := client.NewSession()
		require.NoError(t, err)
		defer sess.Close()

		out, err := sess.Output("get /Servers/db port")
		var exitErr *gossh.ExitError
		require.True(t, errors.As(err, &exitErr), "got %v", err)
		assert.Equal(t, 1, exitErr.ExitStatus())
		assert.Equal(t, "Attribute 'port' does not exist.\n", string(out))
	})

	t.Run("unknown command", func(t *testing.T) {
		sess, err := client.NewSession()
		require.NoError(t, err)
		defer sess.Close()

		out, err := sess.Output("reboot")
		var exitErr *gossh.ExitError
		require.True(t, errors.As(err, &exitErr), "got %v", err)
		assert.Contains(t, string(out), "reboot")
	})

	report := readReport(t, events)
	// One login event per session channel.
	assert.Equal(t, 3, report.Login.Usernames.Count("keyshell"))
	assert.Equal(t, 3, report.Login.Results.Count(LoginAccepted))
	assert.Equal(t, 3, report.Dispatch.States.Count("SUCCESS")+report.Dispatch.States.Count("ABORTED"))
}

func TestServerRejectsBadPassword(t *testing.T) {
	addr, events := startServer(t, testConfig(t))

	_, err := dial(addr, "keyshell", "wrong")
	assert.Error(t, err)

	_, err = dial(addr, "root", "changeme")
	assert.Error(t, err)

	report := readReport(t, events)
	assert.Equal(t, 2, report.Login.Results.Count(LoginRejected))
	assert.Equal(t, 0, report.Login.Results.Count(LoginAccepted))
}

func TestServerBanner(t *testing.T) {
	cfg := testConfig(t)
	cfg.SSH.Banner = "Authorized users only\n"
	addr, _ := startServer(t, cfg)

	var (
		mu     sync.Mutex
		banner string
	)
	client, err := gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "keyshell",
		Auth:            []gossh.AuthMethod{gossh.Password("changeme")},
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		BannerCallback: func(message string) error {
			mu.Lock()
			defer mu.Unlock()
			banner = message
			return nil
		},
	})
	require.NoError(t, err)
	defer client.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Authorized users only\n", banner)
}

func TestServerRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.SSH.OutputRate = 1 << 20
	addr, _ := startServer(t, cfg)

	client, err := dial(addr, "keyshell", "changeme")
	require.NoError(t, err)
	defer client.Close()

	sess, err := client.NewSession()
	require.NoError(t, err)
	defer sess.Close()

	out, err := sess.Output("echo " + strings.Repeat("a", 100))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 100)+"\n", string(out))
}

func TestNewRequiresHostKey(t *testing.T) {
	_, err := New(config.Default(), shell.NewRegistry(), tree.New(nil), nil, nil)
	assert.Error(t, err)
}
