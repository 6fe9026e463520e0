package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/xlmerge/pkg/filter"
	"github.com/ruslano69/xlmerge/pkg/history"
	"github.com/ruslano69/xlmerge/pkg/merge"
	"github.com/ruslano69/xlmerge/pkg/xlsx"
)

// runMerge выполняет объединение по YAML-конфигу.
func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	configPath := fs.String("config", "", "path to merge config YAML (required)")
	fs.Parse(args)

	if *configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := loadMergeConfig(*configPath)
	if err != nil {
		return err
	}

	mode, _ := merge.ParseJoinMode(cfg.JoinMode)
	opts := merge.Options{
		JoinMode:  mode,
		FillValue: cfg.FillValue,
		Prefix:    cfg.Prefix,
	}

	sources := make([]merge.RawSource, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		t, err := xlsx.ReadFile(src.Path, src.Sheet)
		if err != nil {
			return err
		}
		key := src.KeyColumn
		if key == "" {
			key = merge.GuessKeyColumn(t)
			log.Info().Str("source", src.Name).Str("key_column", key).Msg("key column inferred")
		}
		for _, warn := range filter.KindMismatches(t, src.Filters) {
			log.Warn().Str("source", src.Name).Msg(warn)
		}
		sources = append(sources, merge.RawSource{
			Spec: merge.SourceSpec{
				Name:      src.Name,
				KeyColumn: key,
				Include:   src.Include,
				Filters:   src.Filters,
			},
			Table: t,
		})
	}

	result, err := merge.Run(sources, opts)
	if err != nil {
		return err
	}

	printStats(result.Stats, len(sources))

	if !cfg.Output.Save && !cfg.Output.ExportSources {
		return nil
	}

	ctx := context.Background()

	if cfg.Output.ExportSources {
		if err := exportSources(cfg, result.Prepared); err != nil {
			return err
		}
	}

	if cfg.Output.Save {
		repo, err := history.OpenSQLite(cfg.Output.DBPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		saver, err := history.NewSaver(cfg.Output.Dir, repo)
		if err != nil {
			return err
		}

		// Пустое basename превращается в final_merged_<дата_время>
		// внутри Saver.
		rec, err := saver.Save(ctx, history.SaveRequest{
			BaseName:   cfg.Output.BaseName,
			Clean:      result.Clean,
			Annotated:  result.Annotated,
			FlagColumn: merge.UnmatchedColumn,
			Overwrite:  cfg.Output.Overwrite,
		})
		if err != nil {
			// Результат объединения цел: сохранение можно повторить,
			// не пересчитывая merge.
			log.Warn().Err(err).Msg("save failed, merge result is intact")
			return err
		}
		log.Info().Int64("id", rec.ID).Str("clean", rec.CleanPath).
			Str("colored", rec.ColoredPath).Msg("saved to history")
	}

	return nil
}

// exportSources выгружает каждый подготовленный источник отдельным
// файлом - аудит применённых фильтров.
func exportSources(cfg *MergeConfig, prepared []*merge.Prepared) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %q: %w", cfg.Output.Dir, err)
	}
	for _, p := range prepared {
		name := "filtered_" + xlsx.SanitizeBaseName(p.Name) + ".xlsx"
		path, err := xlsx.UniquePath(filepath.Join(cfg.Output.Dir, name), cfg.Output.Overwrite)
		if err != nil {
			return err
		}
		if err := xlsx.WriteFile(p.Table, path, "filtered"); err != nil {
			return err
		}
		log.Info().Str("source", p.Name).Str("path", path).Msg("filtered source exported")
	}
	return nil
}

// printStats печатает сводку объединения в духе панели метрик.
func printStats(stats merge.Stats, sourceCount int) {
	fmt.Printf("=== Merge Summary ===\n")
	fmt.Printf("Sources:        %d\n", sourceCount)
	fmt.Printf("Total rows:     %d\n", stats.TotalRows)
	fmt.Printf("Fully matched:  %d\n", stats.FullyMatched)
	fmt.Printf("Unmatched:      %d\n", stats.Unmatched)

	counts := make([]int, 0, len(stats.Presence))
	for k := range stats.Presence {
		counts = append(counts, k)
	}
	sort.Ints(counts)
	for _, k := range counts {
		fmt.Printf("  present in %d source(s): %d row(s)\n", k, stats.Presence[k])
	}
}
