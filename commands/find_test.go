package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGolden(t *testing.T) {
	cases := goldenTestSuite{
		"find-attribute": {[]string{"find / 10.0.0"}},
		"find-next":      {[]string{"find web --next", "find 10.0 --next", "find 10.0 --next"}},
		"find-none":      {[]string{"find / nothing-like-this"}},
		"find-pipe":      {[]string{"find / alice | echo found:"}},
	}

	cases.Run(t)
}

func TestFind(t *testing.T) {
	cases := map[string]struct {
		line     string
		expected string
	}{
		"case insensitive":   {"find / WEB", "/Servers/web\n"},
		"case sensitive":     {"find / WEB --case-sensitive", "No matching node found.\n"},
		"wildcard":           {"find / 10.*.2", "/Servers/db\n"},
		"regex whole value":  {"find / ^d.$ --regex", "/Servers/db\n"},
		"regex partial":      {"find / d --regex", "No matching node found.\n"},
		"text only":          {"find / postgres --text-only", "No matching node found.\n"},
		"attributes only":    {"find / db --attributes-only", "No matching node found.\n"},
		"attribute filter":   {"find / 10.0.0.* --attribute-filter user", "No matching node found.\n"},
		"filter match":       {"find / alice -f us.*", "/Accounts/mail\n"},
		"below node":         {"find /Accounts a", "/Accounts/mail\n"},
		"timestamps ignored": {"find / 1710495000000", "No matching node found.\n"},
		"created at":         {"find /Servers * --created at 15.03.2024", "/Servers/web\n/Servers/db\n"},
		"modified before":    {"find /Servers * --modified before 01.01.2024", "No matching node found.\n"},
		"modified after":     {"find /Servers w --modified after 14.03.2024", "/Servers/web\n"},
	}

	for tn, tc := range cases {
		tc := tc
		t.Run(tn, func(t *testing.T) {
			f := newFixture(t)
			f.Run(t, tc.line)
			assert.Equal(t, tc.expected, f.Out.String())
		})
	}
}

func TestFindInvalid(t *testing.T) {
	cases := map[string]string{
		"conflicting options": "find / x --text-only --attributes-only",
		"bad regex":           "find / ( --regex",
		"bad date":            "find / x --created at 2024-03-15",
		"bad comparison":      "find / x --created during 15.03.2024",
	}

	for tn, line := range cases {
		line := line
		t.Run(tn, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.Session.Run(line)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Last.ExitCode)
			assert.NotEmpty(t, f.Out.String())
		})
	}
}

func TestFindNextNoMatch(t *testing.T) {
	f := newFixture(t)
	f.Run(t, "select /Servers/web", "find web --next")

	assert.Equal(t, "/Servers/web\nNo matching node found.\n", f.Out.String())
	assert.Equal(t, "/Servers/web", f.App.Tree().Selected().String())
}

func TestCompilePattern(t *testing.T) {
	re, err := compilePattern("a.b*", false, false)
	require.NoError(t, err)
	assert.True(t, re.MatchString("xA.Bcd"))
	assert.False(t, re.MatchString("axb"))

	re, err = compilePattern("a.b", true, false)
	require.NoError(t, err)
	assert.True(t, re.MatchString("axb"))
	assert.False(t, re.MatchString("Axb"))
}

func TestTimeMatcher(t *testing.T) {
	tr := fixtureTree()
	web, err := tr.NodeByPath("/Servers/web")
	require.NoError(t, err)

	at, err := timeMatcher("created", "AT", fixtureTime.Format(DateLayout))
	require.NoError(t, err)
	assert.True(t, at(web))

	before, err := timeMatcher("created", "before", fixtureTime.Add(24*time.Hour).Format(DateLayout))
	require.NoError(t, err)
	assert.True(t, before(web))

	after, err := timeMatcher("created", "after", fixtureTime.Add(24*time.Hour).Format(DateLayout))
	require.NoError(t, err)
	assert.False(t, after(web))
}
