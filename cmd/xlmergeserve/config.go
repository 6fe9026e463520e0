package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/xlmerge/pkg/merge"
)

// Config is the top-level configuration for xlmergeserve.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Merge   MergeDefaults `yaml:"merge"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`          // default ":8080"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default 30s
	MaxUploadMB  int64         `yaml:"max_upload_mb"` // per-request multipart limit, default 64
}

// StorageConfig locates the durable pieces: the artifact directory and
// the history database.
type StorageConfig struct {
	Dir    string `yaml:"dir"`     // default "merged_files"
	DBPath string `yaml:"db_path"` // default "merged_history.db"
}

// MergeDefaults are applied when a request omits an option.
type MergeDefaults struct {
	JoinMode  string `yaml:"join_mode"`  // outer/inner/left/right, default outer
	FillValue string `yaml:"fill_value"` // default "-"
	Prefix    bool   `yaml:"prefix"`     // prefix non-key columns with the source name
	AutoSave  bool   `yaml:"auto_save"`  // persist every successful merge
	Overwrite bool   `yaml:"overwrite"`  // overwrite artifacts instead of suffixing
}

// LoadConfig reads the YAML config at path, applying defaults. An empty
// path yields the default config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.MaxUploadMB = 64
	cfg.Storage.Dir = "merged_files"
	cfg.Storage.DBPath = "merged_history.db"
	cfg.Merge.JoinMode = string(merge.JoinOuter)
	cfg.Merge.FillValue = "-"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if _, err := merge.ParseJoinMode(cfg.Merge.JoinMode); err != nil {
		return nil, fmt.Errorf("config: merge.join_mode: %w", err)
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("config: server.max_upload_mb must be positive")
	}
	return cfg, nil
}
