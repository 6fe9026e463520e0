// Package merge реализует движок сопоставления и сверки нескольких
// табличных источников: подготовку источников, N-арную свёртку по
// каноническому ключу, классификацию присутствия и экспортные
// представления результата.
package merge

import (
	"fmt"
	"strings"

	"github.com/ruslano69/xlmerge/pkg/filter"
	"github.com/ruslano69/xlmerge/pkg/table"
)

const (
	// KeyColumn - единое имя канонической ключевой колонки во всех
	// подготовленных источниках. Никогда не получает префикс.
	KeyColumn = "id"

	// TechPrefix - префикс служебных колонок классификатора; в чистом
	// экспорте такие колонки вырезаются.
	TechPrefix = "__"

	// PrefixSep отделяет имя источника от исходного имени колонки при
	// включённом префиксовании.
	PrefixSep = "__"
)

// SourceSpec описывает, как готовить один источник к объединению.
type SourceSpec struct {
	// Name - отображаемое имя источника (обычно имя файла).
	Name string
	// KeyColumn - выбранная или угаданная ключевая колонка источника.
	KeyColumn string
	// Include - колонки для включения; пустой список означает «все».
	// Ключевая колонка попадает в выборку принудительно.
	Include []string
	// Filters применяются до извлечения ключа.
	Filters filter.Spec
}

// Options - общие параметры объединения, задаваемые вызывающим.
type Options struct {
	JoinMode  JoinMode
	FillValue string // замена отсутствующих значений, применяется ко всей таблице
	Prefix    bool   // префиксовать неключевые колонки именем источника
}

// Prepared - источник, готовый к свёртке: ровно одна каноническая
// ключевая колонка без дубликатов, отобранные и, возможно,
// переименованные остальные колонки.
type Prepared struct {
	Name       string
	Table      *table.Table
	Keys       map[string]struct{} // множество ключей, снятое до свёртки
	Duplicates int                 // удалённые повторы ключа (осталось первое вхождение)
}

// PrepareSource выполняет полный цикл подготовки источника:
// отбор колонок → фильтры → дедупликация по ключу → каноническая
// ключевая колонка → префиксы → заполнение пустых ячеек.
func PrepareSource(t *table.Table, spec SourceSpec, opts Options) (*Prepared, error) {
	// Таблица может прийти не только из xlsx-ридера, но и из кода
	// вызывающего; инварианты проверяются на входе.
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("source %q: %w", spec.Name, err)
	}

	// 1. Отбор колонок. Ключевая колонка входит всегда.
	include := spec.Include
	if len(include) == 0 {
		include = t.Columns
	}
	if !contains(include, spec.KeyColumn) {
		include = append([]string{spec.KeyColumn}, include...)
	}
	work := t.Select(include)

	if !work.HasColumn(spec.KeyColumn) {
		return nil, &MissingKeyColumnError{Source: spec.Name, Column: spec.KeyColumn}
	}

	// 2. Фильтры до извлечения ключа.
	work = filter.Apply(work, spec.Filters)

	// 3. Дедупликация: первое вхождение каждого ключа побеждает,
	// повторы считаем и отбрасываем.
	keyIdx := work.ColumnIndex(spec.KeyColumn)
	seen := make(map[string]struct{}, work.RowCount())
	deduped := table.New(work.Columns...)
	duplicates := 0
	for i := range work.Rows {
		key := strings.TrimSpace(work.Cell(i, keyIdx))
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		deduped.AppendRow(work.Rows[i])
	}
	work = deduped

	// 4–6. Каноническая ключевая колонка идёт первой; исходная ключевая
	// колонка и возможный старый "id" в результат не попадают.
	out := table.New(KeyColumn)
	for _, col := range work.Columns {
		if col == spec.KeyColumn || col == KeyColumn {
			continue
		}
		name := col
		if opts.Prefix {
			name = spec.Name + PrefixSep + col
		}
		out.Columns = append(out.Columns, name)
	}

	keyIdx = work.ColumnIndex(spec.KeyColumn)
	keys := make(map[string]struct{}, work.RowCount())
	for i := range work.Rows {
		row := make([]string, 0, len(out.Columns))
		key := strings.TrimSpace(work.Cell(i, keyIdx))
		row = append(row, key)
		for j, col := range work.Columns {
			if col == spec.KeyColumn || col == KeyColumn {
				continue
			}
			row = append(row, work.Cell(i, j))
		}
		// 7. Единое заполнение пустых ячеек. Применяется ко всей
		// строке, включая ключ: различие null/пустая строка в выводе
		// теряется осознанно.
		if opts.FillValue != "" {
			for k := range row {
				if strings.TrimSpace(row[k]) == "" {
					row[k] = opts.FillValue
				}
			}
		}
		keys[row[0]] = struct{}{}
		out.AppendRow(row)
	}

	return &Prepared{
		Name:       spec.Name,
		Table:      out,
		Keys:       keys,
		Duplicates: duplicates,
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
