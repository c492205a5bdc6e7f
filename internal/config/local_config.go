package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml fields that are read
// directly from the file rather than through the viper instance. This
// matters when config is needed before Initialize runs, for example
// when deciding which database file to open.
//
// Proper YAML parsing handles comments, indentation and special
// characters that ad-hoc line matching would miss.
type LocalConfig struct {
	DB    string `yaml:"db"`
	Actor string `yaml:"actor"`
	JSON  bool   `yaml:"json"`
}

// LoadLocalConfig reads and parses config.yaml from the planvote
// directory. Returns an empty LocalConfig (not nil) if the file does
// not exist or cannot be parsed.
func LoadLocalConfig(dir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml")) // #nosec G304 - path from planvote dir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}

// LoadLocalConfigWithEnv reads config.yaml and applies environment
// overrides. Environment variables take precedence over file values.
func LoadLocalConfigWithEnv(dir string) *LocalConfig {
	cfg := LoadLocalConfig(dir)

	if db := os.Getenv("PV_DB"); db != "" {
		cfg.DB = db
	}
	if actor := os.Getenv("PV_ACTOR"); actor != "" {
		cfg.Actor = actor
	}
	return cfg
}
