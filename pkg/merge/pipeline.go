package merge

import (
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// RawSource - один загруженный источник на входе конвейера.
type RawSource struct {
	Spec  SourceSpec
	Table *table.Table
}

// Result - полный выход конвейера объединения.
type Result struct {
	// Merged - классифицированная таблица в порядке свёртки.
	Merged *table.Table
	// Annotated - то же с детерминированной сортировкой
	// (несопоставленные в конце); идёт в подсвеченный экспорт.
	Annotated *table.Table
	// Clean - пользовательское представление без служебных колонок.
	Clean *table.Table
	// Prepared - подготовленные источники, каждый доступен для
	// отдельной выгрузки (аудит применённых фильтров).
	Prepared []*Prepared
	// Stats - сводка присутствия/совпадений.
	Stats Stats
	// Warnings - предупреждения о дубликатах ключей по источникам.
	Warnings []DuplicateKeyWarning
}

// Run прогоняет весь конвейер: подготовка каждого источника, свёртка,
// классификация, экспортные представления. Если у источника не задана
// ключевая колонка, она выводится эвристикой GuessKeyColumn.
//
// Конвейер синхронный: вызов выполняется до конца или до первой
// ошибки, фоновых стадий нет.
func Run(sources []RawSource, opts Options) (*Result, error) {
	prepared := make([]*Prepared, 0, len(sources))
	var warnings []DuplicateKeyWarning

	for i := range sources {
		spec := sources[i].Spec
		if spec.KeyColumn == "" {
			spec.KeyColumn = GuessKeyColumn(sources[i].Table)
		}
		p, err := PrepareSource(sources[i].Table, spec, opts)
		if err != nil {
			mergeFailuresTotal.WithLabelValues("prepare").Inc()
			return nil, err
		}
		if p.Duplicates > 0 {
			w := DuplicateKeyWarning{Source: p.Name, Count: p.Duplicates}
			warnings = append(warnings, w)
			log.Warn().Str("source", p.Name).Int("duplicates", p.Duplicates).
				Msg("duplicate key values, keeping first occurrence")
		}
		prepared = append(prepared, p)
	}

	merged, err := Reduce(prepared, opts.JoinMode)
	if err != nil {
		mergeFailuresTotal.WithLabelValues("reduce").Inc()
		return nil, err
	}

	classified, stats := Classify(merged, prepared)
	annotated := SortedView(classified)
	clean := CleanView(classified)

	mergesTotal.WithLabelValues(string(opts.JoinMode)).Inc()
	mergeRowsOut.Add(float64(stats.TotalRows))
	mergeUnmatchedRows.Add(float64(stats.Unmatched))

	log.Info().
		Int("sources", len(sources)).
		Str("join_mode", string(opts.JoinMode)).
		Int("rows", stats.TotalRows).
		Int("unmatched", stats.Unmatched).
		Msg("merge completed")

	return &Result{
		Merged:    classified,
		Annotated: annotated,
		Clean:     clean,
		Prepared:  prepared,
		Stats:     stats,
		Warnings:  warnings,
	}, nil
}
