// Package rtconfig defines and loads the runtime configuration document:
// an ordered list of libraries to load, each with an optional explicit
// path and an optional attributes document.
//
// The command-line argument parser and configuration file discovery
// proper are out of scope here; this package is the narrow interface the
// runtime needs to accept an already-located config file and turn it into
// typed Go values.
package rtconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AttrKV is one {key, value} attribute entry. Value is decoded by YAML's
// native scalar typing (string, int, float64, bool) and re-encoded the
// same way when serialized back out for a plugin's Start/Run call.
type AttrKV struct {
	Key   string      `yaml:"key"`
	Value interface{} `yaml:"value"`
}

// LibraryConfig describes one plugin to load.
type LibraryConfig struct {
	Name       string   `yaml:"name"`
	Path       string   `yaml:"path,omitempty"`
	Attributes []AttrKV `yaml:"attributes,omitempty"`
}

// AttributesYAML serializes Attributes into the YAML document shape the
// blackboard Store.Start (and any other plugin's Start/Run) expects, or
// "" if there are none.
func (l LibraryConfig) AttributesYAML() (string, error) {
	if len(l.Attributes) == 0 {
		return "", nil
	}
	b, err := yaml.Marshal(l.Attributes)
	if err != nil {
		return "", fmt.Errorf("rtconfig: encoding attributes for %s: %w", l.Name, err)
	}
	return string(b), nil
}

// Config is the top-level runtime configuration document.
type Config struct {
	Libraries []LibraryConfig `yaml:"libraries"`
}

// Load reads and parses a Config from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rtconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rtconfig: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the structural invariants a config document must
// satisfy before the loader touches it: every library has a name, and
// names are unique (first occurrence wins at load time, but a config
// that declares the same name twice is almost certainly a mistake worth
// surfacing early).
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Libraries))
	for i, lib := range c.Libraries {
		if lib.Name == "" {
			return fmt.Errorf("rtconfig: libraries[%d] has no name", i)
		}
		if seen[lib.Name] {
			return fmt.Errorf("rtconfig: duplicate library name %q", lib.Name)
		}
		seen[lib.Name] = true
	}
	return nil
}
