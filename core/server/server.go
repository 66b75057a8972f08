// Package server exposes the shell over SSH.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync/atomic"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/keyshell/core/config"
	"github.com/josephlewis42/keyshell/core/console"
	"github.com/josephlewis42/keyshell/core/logger"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
	"github.com/juju/ratelimit"
	gossh "golang.org/x/crypto/ssh"
)

// Server hosts one shell session per SSH connection. All sessions share the
// registry and tree.
type Server struct {
	configuration *config.Configuration
	registry      *shell.Registry
	tree          *tree.Tree
	events        *logger.Logger
	logger        *log.Logger
	sshServer     *ssh.Server
}

// New creates a server listening on the configured port. The host key is
// read from the configuration directory.
func New(configuration *config.Configuration, registry *shell.Registry, t *tree.Tree, events *logger.Logger, opLogger *log.Logger) (*Server, error) {
	if events == nil {
		events = logger.Discard()
	}
	if opLogger == nil {
		opLogger = log.New(io.Discard, "", 0)
	}

	server := &Server{
		configuration: configuration,
		registry:      registry,
		tree:          t,
		events:        events,
		logger:        opLogger,
	}

	server.sshServer = &ssh.Server{
		Addr: fmt.Sprintf(":%d", configuration.SSH.Port),
		Handler: func(s ssh.Session) {
			if err := server.HandleConnection(s); err != nil {
				server.logger.Printf("session from %s: %v", s.RemoteAddr(), err)
			}
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			ok := server.checkPassword(ctx.User(), password)
			if !ok {
				server.recordLogin(server.events.Sessionless(), ctx.User(), ctx.RemoteAddr(), "", LoginRejected)
			}
			return ok
		},
		ServerConfigCallback: func(ssh.Context) *gossh.ServerConfig {
			return &gossh.ServerConfig{BannerCallback: bannerCallback(configuration.SSH.Banner)}
		},
	}

	pem, err := configuration.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

// Results of login attempts.
const (
	LoginAccepted = "accepted"
	LoginRejected = "rejected"
)

func (s *Server) recordLogin(sl *logger.SessionLogger, user string, addr net.Addr, command, result string) {
	err := sl.Record(logger.EventLogin, map[string]interface{}{
		"username":    user,
		"remote_addr": addr.String(),
		"command":     command,
		"result":      result,
	})
	if err != nil {
		s.logger.Printf("couldn't record login: %v", err)
	}
}

// bannerCallback returns nil for an empty banner so none is sent.
func bannerCallback(banner string) func(gossh.ConnMetadata) string {
	if banner == "" {
		return nil
	}
	return func(gossh.ConnMetadata) string {
		return banner
	}
}

func (s *Server) checkPassword(user, password string) bool {
	for _, allowed := range s.configuration.GetPasswords(user) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(allowed)) == 1 {
			return true
		}
	}
	return false
}

// output wraps the connection in a rate limited writer if configured.
func (s *Server) output(w io.Writer) io.Writer {
	rate := s.configuration.SSH.OutputRate
	if rate <= 0 {
		return w
	}
	return ratelimit.Writer(w, ratelimit.NewBucketWithRate(float64(rate), rate))
}

// HandleConnection runs the command sent with the connection or an
// interactive shell if there was none.
func (s *Server) HandleConnection(sess ssh.Session) error {
	sessionLogger := s.events.NewSession()
	s.recordLogin(sessionLogger, sess.User(), sess.RemoteAddr(), sess.RawCommand(), LoginAccepted)

	app := console.NewApp(s.configuration, s.tree)
	out := s.output(sess)
	sessionOpts := []shell.SessionOption{
		shell.WithLogger(s.logger),
		shell.WithRecorder(sessionLogger),
	}

	if line := sess.RawCommand(); line != "" {
		sink := console.NewWriterSink(out, false)
		session := shell.NewSession(s.registry, app, sink, sessionOpts...)
		code := runCommand(session, sink, line)
		return sess.Exit(code)
	}

	ptyInfo, winch, isPTY := sess.Pty()
	var width int64 = int64(ptyInfo.Window.Width)
	go func() {
		for window := range winch {
			atomic.StoreInt64(&width, int64(window.Width))
		}
	}()

	c, err := console.New(s.registry, app, console.Options{
		Stdin:          sess,
		Stdout:         out,
		Stderr:         sess.Stderr(),
		IsTerminal:     func() bool { return isPTY },
		Width:          func() int { return int(atomic.LoadInt64(&width)) },
		Prompt:         s.configuration.Prompt,
		Color:          s.configuration.Color && isPTY,
		Logger:         s.logger,
		SessionOptions: sessionOpts,
	})
	if err != nil {
		sess.Exit(1)
		return err
	}
	defer c.Close()

	if err := c.Run(); err != nil {
		sess.Exit(1)
		return err
	}
	return sess.Exit(0)
}

// runCommand runs a single line and returns the exit status for the client.
func runCommand(session *shell.Session, sink *console.WriterSink, line string) int {
	res, err := session.Run(line)
	switch {
	case errors.Is(err, shell.ErrExit):
		return 0
	case err != nil:
		sink.Errorln(err)
		return 1
	case res.State != shell.StateSuccess:
		return 1
	default:
		return res.Last.ExitCode
	}
}

// ListenAndServe listens on the configured port.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("- Starting SSH server on %s\n", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.sshServer.Serve(l)
}

// Shutdown stops accepting connections and waits for open ones to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
