package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "github.com/goccy/go-yaml"
)

// Config is the top-level configuration loaded from file/env/flags.
type Config struct {
	ListenAddr string `json:"listenAddr" yaml:"listenAddr"`
	AdminAddr  string `json:"adminAddr" yaml:"adminAddr"`
	Capacity   int    `json:"capacity" yaml:"capacity"`
	SiteDir    string `json:"siteDir" yaml:"siteDir"`
	LogLevel   string `json:"logLevel" yaml:"logLevel"`
	LogFormat  string `json:"logFormat" yaml:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		ListenAddr: ":5480",
		AdminAddr:  ":5481",
		Capacity:   65536,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If
// path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse json: %w", err)
		}
	}
	return cfg, nil
}
