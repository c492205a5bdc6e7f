package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestIsNoDbCommand(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"version", true},
		{"init", true},
		{"help", true},
		{"completion", true},
		{"feature", false},
		{"doctor", false},
		{"stats", false},
	}
	for _, tt := range tests {
		cmd := &cobra.Command{Use: tt.name}
		if got := isNoDbCommand(cmd); got != tt.want {
			t.Errorf("isNoDbCommand(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 30); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := "a feature name that runs well past the column width"
	got := truncate(long, 20)
	if len(got) > 20+2 { // ellipsis rune is multi-byte
		t.Errorf("truncate left %d bytes: %q", len(got), got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"init", "tenant", "user", "invite", "project", "feature",
		"planning", "commitment", "vote", "estimate", "doctor",
		"stats", "version",
	}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered on root", name)
		}
	}
}
