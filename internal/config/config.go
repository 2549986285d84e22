package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the user's home directory when
// no -config flag is given.
const FileName = ".swiftsub.toml"

// Config holds the command-line defaults. Flags given on the command line
// override these values.
type Config struct {
	Debug bool        `toml:"debug"`
	Check CheckConfig `toml:"check"`
	Suite SuiteConfig `toml:"suite"`
	REPL  REPLConfig  `toml:"repl"`
}

type CheckConfig struct {
	// Types makes the ast command print inferred types by default.
	Types bool `toml:"types"`
}

type SuiteConfig struct {
	Manifest string `toml:"manifest"`
	Verbose  bool   `toml:"verbose"`
}

type REPLConfig struct {
	Prompt   string `toml:"prompt"`
	Continue string `toml:"continue"`
	History  string `toml:"history"` // empty disables history
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:   "swift> ",
			Continue: "  ...> ",
		},
	}
}

// DefaultPath returns ~/.swiftsub.toml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads the config file at path over the defaults. A missing file is
// not an error unless required is set. Unknown keys are rejected.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Parse(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text into cfg, keeping fields the text does not set.
func Parse(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.REPL.History = expandHome(cfg.REPL.History)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
