package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/josephlewis42/keyshell/commands"
	"github.com/josephlewis42/keyshell/core/config"
	"github.com/josephlewis42/keyshell/core/logger"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
	"github.com/josephlewis42/keyshell/modules"
)

// environment is everything a front end needs to host sessions.
type environment struct {
	Config   *config.Configuration
	Registry *shell.Registry
	Tree     *tree.Tree
	Events   *logger.Logger

	eventLog io.Closer
}

// newRegistry registers the built-in commands, the enabled modules and the
// configured aliases.
func newRegistry(configuration *config.Configuration) (*shell.Registry, error) {
	reg := shell.NewRegistry()
	if err := commands.RegisterAll(reg); err != nil {
		return nil, err
	}
	if err := modules.Enable(reg, configuration.Modules); err != nil {
		return nil, err
	}
	for _, def := range configuration.Aliases {
		name, value, err := shell.ParseAlias(def)
		if err != nil {
			return nil, err
		}
		reg.AddAlias(name, value)
	}
	return reg, nil
}

// setup builds the registry and tree. Events are appended to the configured
// event log unless withEvents is false.
func setup(configuration *config.Configuration, withEvents bool, operator *log.Logger) (*environment, error) {
	reg, err := newRegistry(configuration)
	if err != nil {
		return nil, err
	}

	t := tree.New(nil)
	t.LoadSeed(nil, configuration.Tree)

	env := &environment{
		Config:   configuration,
		Registry: reg,
		Tree:     t,
		Events:   logger.Discard(),
	}

	if withEvents {
		fd, err := configuration.OpenEventLog()
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		operator.Printf("- Appending events to %s\n", configuration.EventLog)
		env.Events = logger.NewJSONLinesLogRecorder(fd)
		env.eventLog = fd
	}

	return env, nil
}

func (e *environment) Close() error {
	if e.eventLog == nil {
		return nil
	}
	return e.eventLog.Close()
}
