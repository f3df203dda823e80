// Package config loads the attune configuration file: the watch settings
// and the per-library format, folders and compatibility flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tleroux/attune/internal/format"
)

// WatchConfig selects which libraries are observed and how long bursts of
// filesystem events are merged before dispatch.
type WatchConfig struct {
	Every     int      `koanf:"every"`     // debounce interval in seconds
	Libraries []string `koanf:"libraries"` // empty means all libraries
}

// Library is one organized collection: a compiled format applied to a set
// of root folders.
type Library struct {
	Format      *format.Format
	Folders     []string
	ExfatCompat bool
}

// rawLibrary is the on-disk shape before format compilation and folder
// sanitation.
type rawLibrary struct {
	Format      string   `koanf:"format"`
	Folders     []string `koanf:"folders"`
	ExfatCompat bool     `koanf:"exfat-compat"`
}

type rawConfig struct {
	Watch     WatchConfig           `koanf:"watch"`
	Libraries map[string]rawLibrary `koanf:"libraries"`
}

// Config is the loaded and validated configuration.
type Config struct {
	Watch     WatchConfig
	Libraries map[string]*Library
}

// DefaultPath returns the standard config location
// (~/.config/attune/config.toml).
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "attune", "config.toml")
}

// Load reads and validates the configuration at path. An empty path means
// DefaultPath. A library with a malformed format string fails the whole
// load, as does a folder shared between two libraries. Folders that do
// not exist or are not absolute are skipped with a warning.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, err
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, err
	}

	cfg := &Config{
		Watch:     raw.Watch,
		Libraries: make(map[string]*Library, len(raw.Libraries)),
	}

	seen := make(map[string]string) // folder -> library that claimed it
	for name, rl := range raw.Libraries {
		f, err := format.Parse(rl.Format)
		if err != nil {
			return nil, fmt.Errorf("library %q: %w", name, err)
		}

		lib := &Library{Format: f, ExfatCompat: rl.ExfatCompat}
		for _, folder := range rl.Folders {
			folder = expandPath(folder)
			if !filepath.IsAbs(folder) || !dirExists(folder) {
				logger.Warn("library contains an invalid path, ignoring",
					"library", name, "path", folder)
				continue
			}
			if owner, dup := seen[folder]; dup {
				return nil, fmt.Errorf("folder %q appears in both %q and %q", folder, owner, name)
			}
			seen[folder] = name
			lib.Folders = append(lib.Folders, folder)
		}

		cfg.Libraries[name] = lib
	}

	return cfg, nil
}

// Library returns the named library.
func (c *Config) Library(name string) (*Library, bool) {
	lib, ok := c.Libraries[name]
	return lib, ok
}

// LibraryFor returns the library owning the given folder, matched against
// the libraries' configured root folders.
func (c *Config) LibraryFor(folder string) (*Library, bool) {
	for _, lib := range c.Libraries {
		for _, f := range lib.Folders {
			if f == folder {
				return lib, true
			}
		}
	}
	return nil, false
}

// WatchedRoots maps every watched root folder to its library name. When
// watch.libraries is empty every library is watched.
func (c *Config) WatchedRoots() map[string]string {
	selected := c.Libraries
	if len(c.Watch.Libraries) > 0 {
		selected = make(map[string]*Library, len(c.Watch.Libraries))
		for _, name := range c.Watch.Libraries {
			if lib, ok := c.Libraries[name]; ok {
				selected[name] = lib
			}
		}
	}

	roots := make(map[string]string)
	for name, lib := range selected {
		for _, folder := range lib.Folders {
			roots[folder] = name
		}
	}
	return roots
}

// Every returns the watch debounce interval, defaulting to one second.
func (c *Config) Every() time.Duration {
	if c.Watch.Every <= 0 {
		return time.Second
	}
	return time.Duration(c.Watch.Every) * time.Second
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
