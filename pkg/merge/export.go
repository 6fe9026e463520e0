package merge

import (
	"sort"
	"strings"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// SortedView возвращает аннотированную таблицу с детерминированным
// порядком строк: несопоставленные строки в конце, внутри групп - по
// возрастанию канонического ключа. Служебные колонки сохраняются, их
// использует подсветка при экспорте.
func SortedView(classified *table.Table) *table.Table {
	out := classified.Clone()
	keyIdx := out.ColumnIndex(KeyColumn)
	unmatchedIdx := out.ColumnIndex(UnmatchedColumn)

	sort.SliceStable(out.Rows, func(a, b int) bool {
		ua := unmatchedIdx != -1 && out.Rows[a][unmatchedIdx] == "true"
		ub := unmatchedIdx != -1 && out.Rows[b][unmatchedIdx] == "true"
		if ua != ub {
			return !ua // сопоставленные раньше несопоставленных
		}
		if keyIdx == -1 {
			return false
		}
		return out.Rows[a][keyIdx] < out.Rows[b][keyIdx]
	})
	return out
}

// CleanView возвращает «чистое» представление: те же строки в том же
// порядке, что у SortedView, но без служебных колонок классификатора.
func CleanView(classified *table.Table) *table.Table {
	sorted := SortedView(classified)
	visible := make([]string, 0, sorted.ColumnCount())
	for _, col := range sorted.Columns {
		if strings.HasPrefix(col, TechPrefix) {
			continue
		}
		visible = append(visible, col)
	}
	return sorted.Select(visible)
}
