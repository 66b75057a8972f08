package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("set and print", func(t *testing.T) {
		f := newFixture(t)
		f.Run(t, "config --set user alice", "config -s db.password secret", "config")

		assert.Equal(t, "db.password = *****\nuser = alice\n", f.Out.String())
		value, ok := f.App.Setting("db.password")
		assert.True(t, ok)
		assert.Equal(t, "secret", value)
	})

	t.Run("set is quiet", func(t *testing.T) {
		f := newFixture(t)
		f.Run(t, "config --set user alice")
		assert.Empty(t, f.Out.String())
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		f.App.SetSetting("editor", "vi")
		f.Run(t, "config --delete editor --print")

		assert.Empty(t, f.Out.String())
		_, ok := f.App.Setting("editor")
		assert.False(t, ok)
	})

	t.Run("delete missing", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.Session.Run("config -d editor")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Last.ExitCode)
		assert.Equal(t, "Settings key 'editor' does not exist.\n", f.Out.String())
	})

	t.Run("multiline", func(t *testing.T) {
		f := newFixture(t)
		f.App.SetSetting("motd", "hello\nworld")
		f.Run(t, "config")
		assert.Equal(t, "motd = hello\n    world\n", f.Out.String())
	})
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, isSecretKey("Password"))
	assert.True(t, isSecretKey("db.pw"))
	assert.True(t, isSecretKey("paswd"))
	assert.False(t, isSecretKey("user"))
}
