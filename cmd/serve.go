package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/keyshell/core/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shell over SSH on the configured port.",
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Stdin.Close()
		cmd.SilenceUsage = true
		operator := log.New(cmd.ErrOrStderr(), "[serve] ", 0)
		operator.Println("Initializing server...")

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		env, err := setup(configuration, true, operator)
		if err != nil {
			return err
		}
		defer env.Close()

		srv, err := server.New(configuration, env.Registry, env.Tree, env.Events, operator)
		if err != nil {
			return err
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				operator.Fatal(err)
			}
		}()

		sigs := make(chan os.Signal, 1)

		operator.Println("- Starting interrupt handler")
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		sig := <-sigs
		operator.Printf("Got signal %q, terminating...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			operator.Fatalf("Server shutdown failed: %s", err)
		}
		operator.Print("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
