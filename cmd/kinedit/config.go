package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds persistent editor settings
type Config struct {
	Backend  []string // simulation backend command and args
	FileType string   // "png" or "svg"
	LastDir  string   // last used directory
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	return Config{
		Backend:  []string{"python3", "engine/main.py"},
		FileType: "png",
		LastDir:  cwd,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kinedit"
	}
	return filepath.Join(home, ".kinedit")
}

// LoadConfig loads configuration from the user's config file
func LoadConfig() Config {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return DefaultConfig()
	}
	return parseConfig(string(data))
}

// parseConfig reads the simple key = "value" format the editor writes
func parseConfig(content string) Config {
	cfg := DefaultConfig()
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		switch key {
		case "backend":
			if fields := strings.Fields(val); len(fields) > 0 {
				cfg.Backend = fields
			}
		case "file_type":
			if val == "png" || val == "svg" {
				cfg.FileType = val
			}
		case "last_dir":
			if val != "" {
				cfg.LastDir = val
			}
		}
	}
	return cfg
}

// SaveConfig saves configuration to the user's config file
func SaveConfig(cfg Config) error {
	content := fmt.Sprintf("# kinedit configuration\nbackend = \"%s\"\nfile_type = \"%s\"\nlast_dir = \"%s\"\n",
		strings.Join(cfg.Backend, " "), cfg.FileType, cfg.LastDir)
	return os.WriteFile(ConfigPath(), []byte(content), 0644)
}
