package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeDefaults(t *testing.T) {
	t.Cleanup(Reset)
	dir := t.TempDir()

	if err := Initialize(dir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	want := filepath.Join(dir, "planvote.db")
	if got := GetString("db"); got != want {
		t.Errorf("db default = %q, want %q", got, want)
	}
	if GetBool("json") {
		t.Error("json should default to false")
	}
}

func TestInitializeReadsConfigFile(t *testing.T) {
	t.Cleanup(Reset)
	dir := t.TempDir()
	content := "actor: alice\njson: true\n# comment\ndb: /tmp/other.db\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := Initialize(dir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if got := GetString("actor"); got != "alice" {
		t.Errorf("actor = %q, want alice", got)
	}
	if !GetBool("json") {
		t.Error("json = false, want true")
	}
	if got := GetString("db"); got != "/tmp/other.db" {
		t.Errorf("db = %q, want /tmp/other.db", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Cleanup(Reset)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("actor: alice\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PV_ACTOR", "bob")

	if err := Initialize(dir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := GetString("actor"); got != "bob" {
		t.Errorf("actor = %q, want env override bob", got)
	}
}

func TestGettersSafeBeforeInitialize(t *testing.T) {
	Reset()
	if got := GetString("db"); got != "" {
		t.Errorf("GetString before Initialize = %q, want \"\"", got)
	}
	if GetBool("json") {
		t.Error("GetBool before Initialize = true, want false")
	}
}

func TestSetOverridesLoadedValue(t *testing.T) {
	t.Cleanup(Reset)
	dir := t.TempDir()

	if err := Initialize(dir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	Set("db", "/tmp/effective.db")
	if got := GetString("db"); got != "/tmp/effective.db" {
		t.Errorf("db after Set = %q, want /tmp/effective.db", got)
	}

	// Set also works before Initialize.
	Reset()
	Set("actor", "alice")
	if got := GetString("actor"); got != "alice" {
		t.Errorf("actor after Set = %q, want alice", got)
	}
}

func TestLoadLocalConfig(t *testing.T) {
	dir := t.TempDir()

	// Missing file yields an empty config, not nil.
	cfg := LoadLocalConfig(dir)
	if cfg == nil {
		t.Fatal("LoadLocalConfig returned nil")
	}
	if cfg.DB != "" || cfg.Actor != "" {
		t.Errorf("empty dir config = %+v", cfg)
	}

	content := "db: /data/pv.db\nactor: alice\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg = LoadLocalConfig(dir)
	if cfg.DB != "/data/pv.db" || cfg.Actor != "alice" {
		t.Errorf("config = %+v", cfg)
	}

	t.Setenv("PV_ACTOR", "carol")
	cfg = LoadLocalConfigWithEnv(dir)
	if cfg.Actor != "carol" {
		t.Errorf("env override actor = %q, want carol", cfg.Actor)
	}
	if cfg.DB != "/data/pv.db" {
		t.Errorf("db = %q, want file value preserved", cfg.DB)
	}
}

func TestDirPrefersEnv(t *testing.T) {
	t.Setenv("PV_DIR", "/srv/planvote")
	if got := Dir(); got != "/srv/planvote" {
		t.Errorf("Dir = %q, want /srv/planvote", got)
	}
}
