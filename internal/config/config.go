// Package config handles planvote configuration: a config.yaml in the
// planvote directory read through viper, with PV_* environment
// variables taking precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDirName is the per-user planvote directory under $HOME.
const DefaultDirName = ".planvote"

var v *viper.Viper

// Dir returns the planvote directory: $PV_DIR when set, otherwise
// ~/.planvote.
func Dir() string {
	if dir := os.Getenv("PV_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// Initialize loads config.yaml from dir and wires environment
// overrides (PV_DB, PV_ACTOR, ...). A missing config file is not an
// error; environment and defaults still apply.
func Initialize(dir string) error {
	nv := viper.New()
	nv.SetConfigName("config")
	nv.SetConfigType("yaml")
	nv.AddConfigPath(dir)

	nv.SetEnvPrefix("PV")
	nv.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	nv.AutomaticEnv()

	nv.SetDefault("db", filepath.Join(dir, "planvote.db"))
	nv.SetDefault("json", false)

	if err := nv.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	v = nv
	return nil
}

// GetString returns a config value as string. Safe before Initialize.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool returns a config value as bool. Safe before Initialize.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// Set overrides a config value for the running process.
func Set(key string, value interface{}) {
	if v == nil {
		v = viper.New()
	}
	v.Set(key, value)
}

// Reset discards the loaded configuration. Test helper.
func Reset() {
	v = nil
}
