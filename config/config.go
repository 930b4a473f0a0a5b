// Package config loads service configuration from an optional TOML file with
// environment variable fallbacks.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	envAddr      = "XIAN_LINTER_ADDR"
	envMaxBytes  = "XIAN_LINTER_MAX_SOURCE_BYTES"
	envWhitelist = "XIAN_LINTER_WHITELIST"
)

type Config struct {
	// Addr is the listen address of the HTTP service.
	Addr string `toml:"addr"`
	// MaxSourceBytes caps the decoded source size accepted by the transport
	// layer. The engine itself places no bound on input length.
	MaxSourceBytes int64 `toml:"max_source_bytes"`
	// Whitelist holds extra suppression patterns applied to every request,
	// on top of the built-in defaults.
	Whitelist []string `toml:"whitelist"`
}

func Default() Config {
	return Config{
		Addr:           ":8000",
		MaxSourceBytes: 1 << 20,
	}
}

// Load reads the TOML file at path, or only the defaults and environment
// when path is empty. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := os.Getenv(envAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(envMaxBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", envMaxBytes, v)
		}
		cfg.MaxSourceBytes = n
	}
	if v := os.Getenv(envWhitelist); v != "" {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				cfg.Whitelist = append(cfg.Whitelist, p)
			}
		}
	}

	return cfg, nil
}
