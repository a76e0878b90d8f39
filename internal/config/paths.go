package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pgoexample/config.toml"
	}
	return filepath.Join(home, ".pgoexample", "config.toml")
}

func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

// ResolveFilesDir returns the absolute files directory for cfg.
func ResolveFilesDir(cfg Config) (string, error) {
	expanded, err := ExpandPath(cfg.Storage.FilesDir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// AuditPath is the JSON-lines audit trail kept next to the config file.
func AuditPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "audit.log")
}
