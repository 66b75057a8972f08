package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpGolden(t *testing.T) {
	cases := goldenTestSuite{
		"help":    {[]string{"help"}},
		"man-get": {[]string{"man get"}},
	}

	cases.Run(t)
}

func TestHelpAliases(t *testing.T) {
	f := newFixture(t)
	f.Session.Registry().AddAlias("ll", "ls --long")

	f.Run(t, "help")
	assert.Contains(t, f.Out.String(), "\nActive alias mappings:\n\n    ll -> ls --long\n")
}

func TestMan(t *testing.T) {
	t.Run("alias", func(t *testing.T) {
		f := newFixture(t)
		f.Session.Registry().AddAlias("ll", "ls --long")

		f.Run(t, "man ll")
		assert.Equal(t, "ll is an alias for 'ls --long'\n", f.Out.String())
	})

	t.Run("unknown", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.Session.Run("man nope")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Last.ExitCode)
		assert.Equal(t, "No manual entry for nope\n", f.Out.String())
	})

	t.Run("piped", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.Session.Run("man rm | tac")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Executed)
		assert.Contains(t, f.Out.String(), "NAME")
	})
}
