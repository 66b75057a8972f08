package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	PrivateKeyName    = "private_key"
)

type Configuration struct {
	configFs afero.Fs
	// configurationDir is the directory on the OS filesystem, empty if the
	// configuration isn't backed by one.
	configurationDir string

	Prompt   string            `json:"prompt" validate:"required"`
	Color    bool              `json:"color"`
	Settings map[string]string `json:"settings"`
	Aliases  []string          `json:"aliases" validate:"unique"`
	Modules  []string          `json:"modules" validate:"unique"`
	Tree     []tree.Seed       `json:"tree" validate:"dive"`

	HistoryFile string `json:"history_file"`
	EventLog    string `json:"event_log" validate:"required"`

	SSH SSH `json:"ssh"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	for _, alias := range c.Aliases {
		if _, _, err := shell.ParseAlias(alias); err != nil {
			return fmt.Errorf("aliases: %w", err)
		}
	}
	return nil
}

type SSH struct {
	Port   int    `json:"port" validate:"gte=0,lte=65535"`
	Banner string `json:"banner"`
	// OutputRate limits the bytes per second sent to a client, 0 is unlimited.
	OutputRate int64  `json:"output_rate" validate:"gte=0"`
	Users      []User `json:"users" validate:"unique=Username,dive"`
}

type User struct {
	Username  string   `json:"username" validate:"required"`
	Passwords []string `json:"passwords" validate:"unique"`
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// PrivateKeyPem returns the bytes of the SSH host key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// Fs is the filesystem rooted at the configuration directory.
func (c *Configuration) Fs() afero.Fs {
	return c.fs()
}

// HistoryPath is the OS path of the interactive history file or "" if
// history shouldn't be kept.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" || c.configurationDir == "" {
		return ""
	}
	return filepath.Join(c.configurationDir, c.HistoryFile)
}

// GetPasswords returns allowable passwords for the given username.
func (c *Configuration) GetPasswords(username string) []string {
	var out []string
	for _, v := range c.SSH.Users {
		if v.Username == username {
			out = append(out, v.Passwords...)
		}
	}
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	out.configFs = afero.NewMemMapFs()
	return &out
}

// Default returns the built in configuration backed by an in-memory
// filesystem.
func Default() *Configuration {
	return defaultConfig()
}
