package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/xlmerge/pkg/filter"
	"github.com/ruslano69/xlmerge/pkg/merge"
)

// MergeConfig - декларативное описание одного запуска объединения.
type MergeConfig struct {
	Sources   []SourceConfig `yaml:"sources"`
	JoinMode  string         `yaml:"join_mode"`  // outer/inner/left/right, по умолчанию outer
	FillValue string         `yaml:"fill_value"` // замена пустых значений, по умолчанию "-"
	Prefix    bool           `yaml:"prefix"`     // префиксовать колонки именем источника
	Output    OutputConfig   `yaml:"output"`
}

// SourceConfig - один входной файл.
type SourceConfig struct {
	Name      string      `yaml:"name"`       // отображаемое имя; по умолчанию имя файла
	Path      string      `yaml:"path"`       // путь к .xlsx
	Sheet     string      `yaml:"sheet"`      // лист; пусто = первый
	KeyColumn string      `yaml:"key_column"` // пусто = выводится эвристикой
	Include   []string    `yaml:"include"`    // колонки; пусто = все
	Filters   filter.Spec `yaml:"filters"`
}

// OutputConfig - куда и как сохранять результат.
type OutputConfig struct {
	Dir           string `yaml:"dir"`            // каталог артефактов, по умолчанию merged_files
	DBPath        string `yaml:"db_path"`        // база истории, по умолчанию merged_history.db
	BaseName      string `yaml:"basename"`       // пусто = final_merged_<дата_время>
	Overwrite     bool   `yaml:"overwrite"`      // перезаписывать вместо суффиксов
	Save          bool   `yaml:"save"`           // писать артефакты и запись истории
	ExportSources bool   `yaml:"export_sources"` // выгружать отфильтрованные источники для аудита
}

// loadMergeConfig читает и валидирует конфиг объединения.
func loadMergeConfig(path string) (*MergeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	cfg := &MergeConfig{
		JoinMode:  string(merge.JoinOuter),
		FillValue: "-",
	}
	cfg.Output.Dir = "merged_files"
	cfg.Output.DBPath = "merged_history.db"

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(cfg.Sources) < 2 {
		return nil, fmt.Errorf("at least 2 sources are required, got %d", len(cfg.Sources))
	}
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if src.Path == "" {
			return nil, fmt.Errorf("source[%d]: path is required", i)
		}
		if src.Name == "" {
			src.Name = strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
		}
		if err := src.Filters.Validate(); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}
	}
	if _, err := merge.ParseJoinMode(cfg.JoinMode); err != nil {
		return nil, err
	}
	return cfg, nil
}
