// Package config loads the drivecli configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	derrors "github.com/Jumpaku/go-drivecli/errors"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName names the directory holding drivecli files under the XDG config home.
const AppName = "drivecli"

// Config is the content of config.yaml. Flags given on the command line take precedence.
type Config struct {
	// ClientSecrets is the OAuth client file downloaded from the Google API console.
	ClientSecrets string `yaml:"client_secrets"`
	// Credentials is where the user's token is cached.
	Credentials string `yaml:"credentials"`
	// RootID is the folder "/" refers to.
	RootID string `yaml:"root_id"`
	// Trash moves removed objects to the trash instead of deleting them permanently.
	Trash   bool `yaml:"trash"`
	Strict  bool `yaml:"strict"`
	Workers int  `yaml:"workers"`
	Debug   bool `yaml:"debug"`
}

// Dir returns the drivecli directory under the XDG config home.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath returns the location config.yaml is read from when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ClientSecrets: filepath.Join(Dir(), "client_secrets.json"),
		Credentials:   filepath.Join(Dir(), "credentials.json"),
		RootID:        "root",
		Trash:         true,
		Workers:       1,
	}
}

// Load reads path on top of Default. A missing file is not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	config := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, derrors.NewIOError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	config.ClientSecrets = expand(config.ClientSecrets, filepath.Dir(path))
	config.Credentials = expand(config.Credentials, filepath.Dir(path))
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file '%s': %w", path, err)
	}
	return config, nil
}

// Validate checks the values that have no sensible fallback.
func (c Config) Validate() error {
	if c.ClientSecrets == "" {
		return fmt.Errorf("client_secrets must not be empty")
	}
	if c.Credentials == "" {
		return fmt.Errorf("credentials must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// expand resolves "~/" against the home directory and relative paths against base.
func expand(path, base string) string {
	if path == "" {
		return ""
	}
	if len(path) >= 2 && path[:2] == "~/" {
		return filepath.Join(xdg.Home, path[2:])
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(base, path)
	}
	return path
}
