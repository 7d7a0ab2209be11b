// Package config loads the objabi CLI configuration.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/wasmhost"
)

// Config is the objabi.toml file.
type Config struct {
	Log  Log  `toml:"log"`
	Host Host `toml:"host"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Host configures the wasm transport.
type Host struct {
	MaxHandles int    `toml:"max_handles"`
	MaxData    int    `toml:"max_data"`
	ModuleName string `toml:"module_name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults(toml.MetaData{})
	return c
}

// Load reads path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "cannot read "+path)
	}
	return Parse(data)
}

// Parse decodes a configuration file body. Unknown keys are rejected.
// An explicit max_handles = 0 leaves the handle table unbounded.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	c.applyDefaults(md)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults fills the keys md did not define.
func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !md.IsDefined("host", "max_handles") {
		c.Host.MaxHandles = wasmhost.DefaultMaxHandles
	}
	if !md.IsDefined("host", "max_data") {
		c.Host.MaxData = wasmhost.DefaultMaxData
	}
	if c.Host.ModuleName == "" {
		c.Host.ModuleName = wasmhost.DefaultModuleName
	}
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.InvalidData(errors.PhaseConfig, []string{"log", "level"}, "unknown level "+c.Log.Level)
	}
	if c.Host.MaxHandles < 0 {
		return errors.InvalidData(errors.PhaseConfig, []string{"host", "max_handles"}, "must not be negative")
	}
	if c.Host.MaxData <= 0 {
		return errors.InvalidData(errors.PhaseConfig, []string{"host", "max_data"}, "must be positive")
	}
	return nil
}

// HostOptions converts the host section into wasmhost options.
func (c *Config) HostOptions() []wasmhost.Option {
	return []wasmhost.Option{
		wasmhost.WithMaxHandles(c.Host.MaxHandles),
		wasmhost.WithMaxData(c.Host.MaxData),
		wasmhost.WithModuleName(c.Host.ModuleName),
	}
}
