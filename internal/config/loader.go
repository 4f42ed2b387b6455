package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames lists the config file names searched in each directory, in order.
var FileNames = []string{
	"emptylines.toml",
	".emptylines.toml",
	".emptylines.yaml",
	".emptylines.yml",
}

// ErrNotFound is returned by Find when no config file exists up to the root.
var ErrNotFound = errors.New("no emptylines config found")

// Find walks from startDir up to the file system root looking for a config file.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if st, statErr := os.Stat(dir); statErr == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			st, statErr := os.Stat(candidate)
			if statErr == nil && !st.IsDir() {
				return candidate, nil
			}
			if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
				return "", statErr
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads a TOML or YAML config on top of the defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	if cfg.Syntax == nil {
		cfg.Syntax = map[string]string{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads explicit when set, otherwise the nearest config above
// startDir, otherwise the defaults rooted at startDir.
func Resolve(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	found, err := Find(startDir)
	switch {
	case errors.Is(err, ErrNotFound):
		cfg := Default()
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, absErr
		}
		if st, statErr := os.Stat(root); statErr == nil && !st.IsDir() {
			root = filepath.Dir(root)
		}
		cfg.Root = root
		return cfg, nil
	case err != nil:
		return nil, err
	}
	return Load(found)
}
