package dump

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
debug = true
java-home = "/opt/jdk"
archive-dir = "/var/cache/cds"
history-db = "/var/cache/cds/dumps.db"
`)

	c, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Debug || c.JavaHome != "/opt/jdk" || c.ArchiveDir != "/var/cache/cds" {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.HistoryDB != "/var/cache/cds/dumps.db" {
		t.Errorf("history-db = %q", c.HistoryDB)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigOrDefault(t *testing.T) {
	c, err := LoadConfigOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *c != (Config{}) {
		t.Errorf("expected zero config, got %+v", c)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "debug = maybe\n")
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDebugEnabledFromEnv(t *testing.T) {
	var c Config
	if c.DebugEnabled() {
		t.Error("debug on by default")
	}

	t.Setenv(DebugEnvVar, "true")
	if !c.DebugEnabled() {
		t.Error("CDSHARE_DEBUG=true not honored")
	}

	// Only the exact value counts.
	t.Setenv(DebugEnvVar, "1")
	if c.DebugEnabled() {
		t.Error("CDSHARE_DEBUG=1 should not enable debug")
	}

	t.Setenv(DebugEnvVar, "")
	c.Debug = true
	if !c.DebugEnabled() {
		t.Error("config debug flag not honored")
	}
}
