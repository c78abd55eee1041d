package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths are the configuration files found for one run, lowest
// precedence first. An empty path means none was found.
type ConfigPaths struct {
	System   string // /etc/flowfix/config.yaml
	User     string // $XDG_CONFIG_HOME/flowfix/config.yaml
	Project  string // nearest .flowfix.yml at or above the working directory
	Explicit string // --config
}

//nolint:gochecknoglobals // lookup tables
var (
	projectConfigFiles = []string{
		".flowfix.yml", ".flowfix.yaml", ".flowfix.toml",
		"flowfix.yml", "flowfix.yaml", "flowfix.toml",
	}
	dirConfigFiles = []string{"config.yaml", "config.yml", "config.toml"}
	vcsRootMarkers = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths looks for system, user and project configuration.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}
	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), dirConfigFiles),
		User:    firstFile(userConfigDir(), dirConfigFiles),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return "/etc/flowfix"
	}
	if dir := os.Getenv("ProgramData"); dir != "" {
		return filepath.Join(dir, "flowfix")
	}
	return `C:\ProgramData\flowfix`
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "flowfix")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "flowfix")
}

// FindProjectConfig walks up from startDir, the working directory when
// empty, and returns the first project config file. The walk ends at a
// repository root, the home directory or the filesystem root; finding
// nothing is not an error.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}
		if path := firstFile(dir, projectConfigFiles); path != "" {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if isVCSRoot(dir) || dir == home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// IsTOMLConfig reports whether path names a TOML file; anything else is
// read as YAML.
func IsTOMLConfig(path string) bool {
	return filepath.Ext(path) == ".toml"
}
