package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.MaxUploadMB != 64 {
		t.Errorf("max upload = %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Merge.JoinMode != "outer" || cfg.Merge.FillValue != "-" {
		t.Errorf("merge defaults = %+v", cfg.Merge)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ":9090"
  read_timeout: 10s
storage:
  dir: /var/lib/xlmerge
merge:
  join_mode: inner
  prefix: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Untouched fields keep their defaults.
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("write timeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Storage.Dir != "/var/lib/xlmerge" || cfg.Storage.DBPath != "merged_history.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Merge.JoinMode != "inner" || !cfg.Merge.Prefix {
		t.Errorf("merge = %+v", cfg.Merge)
	}
}

func TestLoadConfig_BadJoinMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("merge:\n  join_mode: cross\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown join mode")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/no/such/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
