// Package config loads and validates the assetdesk configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains bind address and storage configuration.
type Server struct {
	Bind     string `toml:"bind"`
	Database string `toml:"database"`
}

// Auth contains authentication configuration. When JWTSecret is empty a
// random secret is generated and persisted on first start.
type Auth struct {
	JWTSecret       string `toml:"jwt_secret"`
	LoginRateSecond int    `toml:"login_rate_seconds"`
	LoginBurst      int    `toml:"login_burst"`
}

// Approval contains the ordered reviewer chain for hand-over requests.
type Approval struct {
	Chain []string `toml:"chain"`
}

// Geolocation contains the optional location backend. An empty endpoint
// disables location capture; scans are recorded without coordinates.
type Geolocation struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxAgeSeconds  int    `toml:"max_age_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for assetdesk.
type Config struct {
	Server      Server      `toml:"server"`
	Auth        Auth        `toml:"auth"`
	Approval    Approval    `toml:"approval"`
	Geolocation Geolocation `toml:"geolocation"`
	Logging     Logging     `toml:"logging"`
}

// Sample returns the annotated sample configuration file contents.
func Sample() string {
	return sampleConfig
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/assetdesk/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	expanded, err := expandPath(c.Server.Database)
	if err != nil {
		return err
	}
	c.Server.Database = expanded
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and relative paths to absolute ones.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
