package merge

import (
	"fmt"
	"strconv"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// Имена служебных колонок классификатора.
const (
	PresentCountColumn = TechPrefix + "present_count"
	UnmatchedColumn    = TechPrefix + "unmatched"
)

// PresenceColumn возвращает имя флага присутствия для источника с
// порядковым номером idx (нумерация с единицы, как в выгрузках).
func PresenceColumn(idx int) string {
	return fmt.Sprintf("%spresent_in_%d", TechPrefix, idx)
}

// Stats - сводка объединения для вызывающего (панель метрик UI).
type Stats struct {
	TotalRows    int         `json:"total_rows"`
	FullyMatched int         `json:"fully_matched"`
	Unmatched    int         `json:"unmatched"`
	Presence     map[int]int `json:"presence"` // присутствие в k источниках → строк
}

// Classify аннотирует каждую строку объединённой таблицы флагами
// присутствия по источникам, счётчиком присутствия и флагом
// «несопоставлено» (присутствует не во всех источниках).
//
// Принадлежность считается по множествам ключей, снятым с
// подготовленных источников до свёртки, а не по итоговой таблице:
// при режимах inner/left/right присутствие ключа в результате само по
// себе неоднозначно относительно источников. Так даже строки inner-
// соединения несут ту же структуру частичных совпадений, что и при
// outer - это сделано намеренно, ради картинки в UI.
func Classify(merged *table.Table, sources []*Prepared) (*table.Table, Stats) {
	out := merged.Clone()
	keyIdx := out.ColumnIndex(KeyColumn)

	for i := range sources {
		out.Columns = append(out.Columns, PresenceColumn(i+1))
	}
	out.Columns = append(out.Columns, PresentCountColumn, UnmatchedColumn)

	stats := Stats{
		TotalRows: out.RowCount(),
		Presence:  make(map[int]int),
	}

	for i := range out.Rows {
		key := out.Cell(i, keyIdx)
		count := 0
		flags := make([]string, 0, len(sources)+2)
		for _, src := range sources {
			_, present := src.Keys[key]
			if present {
				count++
			}
			flags = append(flags, strconv.FormatBool(present))
		}
		unmatched := count < len(sources)
		flags = append(flags, strconv.Itoa(count), strconv.FormatBool(unmatched))
		out.Rows[i] = append(out.Rows[i], flags...)

		stats.Presence[count]++
		if unmatched {
			stats.Unmatched++
		} else {
			stats.FullyMatched++
		}
	}

	return out, stats
}
