package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandVariables(t *testing.T) {
	vars := map[string]string{
		"user": "alice",
		"dir":  "/home/alice",
	}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}

	cases := map[string]string{
		"echo plain":           "echo plain",
		"echo ${user}":         "echo alice",
		"cd ${dir}/${user}":    "cd /home/alice/alice",
		"echo ${unknown}x":     "echo x",
		`echo \${user}`:        `echo \${user}`,
		`echo "\${user}"`:      `echo "\${user}"`,
		`echo \\${user}`:       `echo \\alice`,
		"echo ${user":          "echo ${user",
		"echo $user":           "echo $user",
		`echo "${user} ${dir}"`: `echo "alice /home/alice"`,
	}

	for line, expected := range cases {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, expected, ExpandVariables(line, lookup))
		})
	}
}

func TestExpandVariablesNilLookup(t *testing.T) {
	assert.Equal(t, "echo ", ExpandVariables("echo ${user}", nil))
}

func TestEscapeValue(t *testing.T) {
	cases := map[string]string{
		"plain":             "plain",
		"abc;echo INJECTED": `abc\;echo INJECTED`,
		`ab"c`:              `ab\"c`,
		`a\b`:               `a\\b`,
		"a|b&&c":            `a\|b\&\&c`,
	}

	for value, expected := range cases {
		t.Run(value, func(t *testing.T) {
			escaped := EscapeValue(value)
			assert.Equal(t, expected, escaped)

			tokens, err := Tokenize(escaped)
			assert.NoError(t, err)
			var words []string
			for _, tok := range tokens {
				assert.False(t, tok.IsOperator())
				words = append(words, tok.Text)
			}
			assert.Equal(t, value, strings.Join(words, " "))
		})
	}
}
