package main

import (
	"os"
	"path/filepath"
	"testing"

	"declgraph/internal/decl"
)

func TestConfigEnforceMode(t *testing.T) {
	cases := []struct {
		cfg  *config
		want decl.EnforceMode
	}{
		{nil, decl.ModeShallow},
		{&config{}, decl.ModeShallow},
		{&config{Mode: "shallow"}, decl.ModeShallow},
		{&config{Mode: "legacy"}, decl.ModeLegacy},
	}
	for _, tc := range cases {
		if got := tc.cfg.enforceMode(); got != tc.want {
			t.Fatalf("enforceMode(%+v) = %v, want %v", tc.cfg, got, tc.want)
		}
	}
}

func TestLoadConfigFromFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte("mode = \"legacy\"\ncolor = \"off\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := rootCmd.PersistentFlags().Set("config", path); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer rootCmd.PersistentFlags().Set("config", "")

	cfg, err := loadConfig(dumpCmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Mode != "legacy" || cfg.Color != "off" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.enforceMode() != decl.ModeLegacy {
		t.Fatalf("mode did not map to legacy")
	}
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte("mode = \"deep\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := rootCmd.PersistentFlags().Set("config", path); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer rootCmd.PersistentFlags().Set("config", "")

	if _, err := loadConfig(dumpCmd); err == nil {
		t.Fatalf("expected an error for unknown mode")
	}
}
