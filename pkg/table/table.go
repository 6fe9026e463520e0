// Package table содержит модель табличных данных xlmerge.
//
// Таблица хранит упорядоченный список колонок и строки как []string.
// Пустая строка в ячейке означает отсутствующее значение (null):
// именно так excelize возвращает пустые ячейки при чтении xlsx.
package table

import "fmt"

// Table представляет одну табличную выборку (лист xlsx, подготовленный
// источник или результат объединения).
type Table struct {
	Columns []string
	Rows    [][]string
}

// New создаёт таблицу с заданными колонками и без строк.
func New(columns ...string) *Table {
	return &Table{
		Columns: append([]string(nil), columns...),
		Rows:    [][]string{},
	}
}

// RowCount возвращает количество строк.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnCount возвращает количество колонок.
func (t *Table) ColumnCount() int { return len(t.Columns) }

// ColumnIndex возвращает индекс колонки по имени или -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn проверяет наличие колонки.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) != -1
}

// Cell возвращает значение ячейки; короткие строки дополняются
// пустыми значениями, как при чтении xlsx с "рваными" строками.
func (t *Table) Cell(row int, col int) string {
	if col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column возвращает все значения колонки в порядке строк.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx == -1 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, idx)
	}
	return values
}

// AppendRow добавляет строку, выравнивая её длину по числу колонок.
func (t *Table) AppendRow(row []string) {
	r := make([]string, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Select возвращает новую таблицу только с указанными колонками
// (в заданном порядке). Колонки, которых нет в таблице, молча
// пропускаются - вызывающий сверяет результат через HasColumn.
func (t *Table) Select(columns []string) *Table {
	keep := make([]int, 0, len(columns))
	kept := New()
	for _, name := range columns {
		if idx := t.ColumnIndex(name); idx != -1 {
			keep = append(keep, idx)
			kept.Columns = append(kept.Columns, name)
		}
	}
	kept.Rows = make([][]string, len(t.Rows))
	for i := range t.Rows {
		row := make([]string, len(keep))
		for j, idx := range keep {
			row[j] = t.Cell(i, idx)
		}
		kept.Rows[i] = row
	}
	return kept
}

// Clone возвращает глубокую копию таблицы.
func (t *Table) Clone() *Table {
	c := New(t.Columns...)
	c.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// Validate проверяет внутренние инварианты таблицы: уникальность имён
// колонок и отсутствие строк длиннее заголовка.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("table: duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range t.Rows {
		if len(row) > len(t.Columns) {
			return fmt.Errorf("table: row %d has %d cells, header has %d columns", i, len(row), len(t.Columns))
		}
	}
	return nil
}
