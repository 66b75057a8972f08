package console

import (
	"errors"
	"sort"
	"sync"

	"github.com/josephlewis42/keyshell/core/config"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/josephlewis42/keyshell/core/tree"
)

// ErrNoPrompter is returned when a command asks a question and nobody can
// answer it.
var ErrNoPrompter = errors.New("no interactive input available")

// Prompter asks the user a question.
type Prompter interface {
	Prompt(question string) (string, error)
}

// PrompterFunc adapts a function to a Prompter.
type PrompterFunc func(question string) (string, error)

func (f PrompterFunc) Prompt(question string) (string, error) {
	return f(question)
}

// App is the host application commands see through shell.Env.
type App struct {
	tree *tree.Tree

	mu       sync.RWMutex
	settings map[string]string
	prompter Prompter
}

var _ shell.Env = (*App)(nil)

// NewApp creates an App over a tree with a copy of the configured settings.
func NewApp(cfg *config.Configuration, t *tree.Tree) *App {
	settings := make(map[string]string)
	if cfg != nil {
		for k, v := range cfg.Settings {
			settings[k] = v
		}
	}
	return &App{tree: t, settings: settings}
}

// SetPrompter changes where Prompt reads answers from.
func (a *App) SetPrompter(p Prompter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompter = p
}

func (a *App) Tree() *tree.Tree {
	return a.tree
}

func (a *App) Setting(key string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.settings[key]
	return v, ok
}

func (a *App) SetSetting(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings[key] = value
}

func (a *App) DeleteSetting(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.settings[key]; !ok {
		return false
	}
	delete(a.settings, key)
	return true
}

func (a *App) Settings() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []string
	for k := range a.settings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (a *App) Prompt(question string) (string, error) {
	a.mu.RLock()
	p := a.prompter
	a.mu.RUnlock()

	if p == nil {
		return "", ErrNoPrompter
	}
	return p.Prompt(question)
}
