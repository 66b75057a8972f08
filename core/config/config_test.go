package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Configuration){
		"missing prompt":    func(c *Configuration) { c.Prompt = "" },
		"bad port":          func(c *Configuration) { c.SSH.Port = 70000 },
		"negative rate":     func(c *Configuration) { c.SSH.OutputRate = -1 },
		"duplicate module":  func(c *Configuration) { c.Modules = []string{"launch", "launch"} },
		"bad alias":         func(c *Configuration) { c.Aliases = []string{"nope"} },
		"duplicate user":    func(c *Configuration) { c.SSH.Users = append(c.SSH.Users, c.SSH.Users[0]) },
		"missing seed text": func(c *Configuration) { c.Tree[0].Children[0].Text = "" },
	}

	for tn, mutate := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetPasswords(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, []string{"changeme"}, cfg.GetPasswords("keyshell"))
	assert.Empty(t, cfg.GetPasswords("root"))
}

func TestHistoryPath(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "", cfg.HistoryPath())

	cfg.configurationDir = "/etc/keyshell"
	assert.Equal(t, "/etc/keyshell/history", cfg.HistoryPath())

	cfg.HistoryFile = ""
	require.Equal(t, "", cfg.HistoryPath())
}
