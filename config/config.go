package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"tarkit/tarfile"
)

const (
	// EnvPrefix marks environment variables that override file settings,
	// e.g. TARKIT_OVERWRITE=true.
	EnvPrefix = "TARKIT_"
	// DefaultFile is loaded from the working directory when no file is given.
	DefaultFile = "tarkit.toml"
)

// Config holds the settings that become tarfile options.
type Config struct {
	Compression    string `koanf:"compression"`
	Destination    string `koanf:"destination"`
	Overwrite      bool   `koanf:"overwrite"`
	FollowSymlinks bool   `koanf:"follow_symlinks"`
	SkipTimestamps bool   `koanf:"skip_timestamps"`
	Verbose        bool   `koanf:"verbose"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"compression":     "none",
		"destination":     ".",
		"overwrite":       false,
		"follow_symlinks": false,
		"skip_timestamps": false,
		"verbose":         false,
	}
}

// Load layers defaults, the TOML file at path and TARKIT_ environment
// variables, later layers winning. An empty path falls back to DefaultFile
// when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if _, err := tarfile.ParseCompression(cfg.Compression); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// TarOptions converts the configuration to tarfile options. Status lines go
// to status when Verbose is set.
func (c *Config) TarOptions(status io.Writer, logger zerolog.Logger) ([]tarfile.Option, error) {
	comp, err := tarfile.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	opts := []tarfile.Option{
		tarfile.WithCompression(comp),
		tarfile.WithPath(c.Destination),
		tarfile.WithOverwrite(c.Overwrite),
		tarfile.WithFollowSymlinks(c.FollowSymlinks),
		tarfile.WithSkipTimestamps(c.SkipTimestamps),
		tarfile.WithLogger(logger),
	}
	if c.Verbose && status != nil {
		opts = append(opts, tarfile.WithStatusWriter(status))
	}
	return opts, nil
}
