// Package config handles git-issue configuration and store location.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirName is the store root used when nothing else is configured.
const DefaultDirName = ".issues"

// FileName is the config file kept in the store root.
const FileName = "config.yaml"

// Paths captures resolved locations for the store and its config.
type Paths struct {
	StoreDir   string // path to the store root, e.g. ./.issues
	ConfigFile string // path to <store>/config.yaml
}

// ResolvePaths locates the store root. An explicit dir wins, then
// GIT_ISSUE_DIR, then .issues in the working directory. Paths are made
// absolute; nothing is created.
func ResolvePaths(explicit string) (Paths, error) {
	dir := explicit
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Paths{}, fmt.Errorf("getting working directory: %w", err)
		}
		dir = filepath.Join(cwd, DefaultDirName)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolving store directory %s: %w", dir, err)
	}
	return Paths{
		StoreDir:   abs,
		ConfigFile: filepath.Join(abs, FileName),
	}, nil
}
