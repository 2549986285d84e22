package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, true)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("", true)
	require.NoError(t, err)
	assert.Equal(t, "swift> ", cfg.REPL.Prompt)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg := Default()
	err := Parse(`
debug = true

[check]
types = true

[suite]
manifest = "tests/suite.yaml"

[repl]
prompt = "> "
history = "/tmp/swiftsub_history"
`, cfg)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Check.Types)
	assert.Equal(t, "tests/suite.yaml", cfg.Suite.Manifest)
	assert.False(t, cfg.Suite.Verbose)
	assert.Equal(t, "> ", cfg.REPL.Prompt)
	assert.Equal(t, "  ...> ", cfg.REPL.Continue, "unset keys keep their default")
	assert.Equal(t, "/tmp/swiftsub_history", cfg.REPL.History)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	err := Parse("verbose = true\n[repl]\ncolour = \"red\"\n", Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repl.colour")
	assert.Contains(t, err.Error(), "verbose")
}

func TestParseSyntaxError(t *testing.T) {
	assert.Error(t, Parse("debug = \n", Default()))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".history"), expandHome("~/.history"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "", expandHome(""))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("[suite]\nverbose = true\n"), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.True(t, cfg.Suite.Verbose)

	require.NoError(t, os.WriteFile(path, []byte("[suite\n"), 0o644))
	_, err = Load(path, true)
	assert.ErrorContains(t, err, "config: parse")
}
