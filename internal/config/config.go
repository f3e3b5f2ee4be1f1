// Package config stores per-user dashboard settings as YAML files. Settings
// load on login or account switch and save from the Settings page; an absent
// or corrupt file yields defaults rather than an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/mpavel/homescreen/internal/logging"
)

const appDirName = "homescreen"

// Settings are one user's dashboard preferences.
type Settings struct {
	City    string `yaml:"city"`
	Topic   string `yaml:"topic"`
	Celsius bool   `yaml:"celsius"`
}

// Default returns the out-of-the-box settings.
func Default() Settings {
	return Settings{
		City:    "Bucharest",
		Topic:   "Top Stories",
		Celsius: true,
	}
}

// DefaultConfigDir is where per-user settings and credentials live.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appDirName)
}

// DefaultCacheDir is where the freshness store lives.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, appDirName)
}

// Service reads and writes per-user settings under a root directory.
type Service struct {
	dir string
}

// NewService creates a settings service rooted at dir.
func NewService(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	return &Service{dir: dir}, nil
}

// Load returns user's settings. Missing files and parse errors both default:
// a fresh account and a corrupt file look the same to the caller. Fields
// absent from the file keep their default values.
func (s *Service) Load(user string) Settings {
	cfg := Default()

	data, err := os.ReadFile(s.path(user))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger := logging.L()
		logger.Debug().Str("user", user).Err(err).Msg("corrupt settings file, using defaults")
		return Default()
	}
	return cfg
}

// Save writes user's settings. The write is whole-file atomic so a crash
// mid-save cannot leave a half-written file behind.
func (s *Service) Save(user string, cfg Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	path := s.path(user)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating user config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

// DeleteUser removes user's whole config namespace. Absent namespaces are
// fine; other users are untouched.
func (s *Service) DeleteUser(user string) error {
	if err := os.RemoveAll(filepath.Join(s.dir, "users", sanitize(user))); err != nil {
		return fmt.Errorf("removing config namespace for %q: %w", user, err)
	}
	return nil
}

func (s *Service) path(user string) string {
	return filepath.Join(s.dir, "users", sanitize(user), "config.yaml")
}

func sanitize(user string) string {
	safe := strings.ReplaceAll(user, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	safe = strings.ReplaceAll(safe, ":", "_")
	return safe
}
