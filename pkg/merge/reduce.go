package merge

import (
	"fmt"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// JoinMode - режим реляционного соединения на каждом попарном шаге
// свёртки.
type JoinMode string

const (
	JoinOuter JoinMode = "outer" // все ключи обеих сторон
	JoinInner JoinMode = "inner" // только ключи, имеющиеся с обеих сторон
	JoinLeft  JoinMode = "left"  // все ключи накопленной левой стороны
	JoinRight JoinMode = "right" // все ключи новой правой стороны
)

// ParseJoinMode разбирает режим из конфигурации/запроса.
func ParseJoinMode(s string) (JoinMode, error) {
	switch JoinMode(s) {
	case JoinOuter, JoinInner, JoinLeft, JoinRight:
		return JoinMode(s), nil
	case "":
		return JoinOuter, nil
	default:
		return "", fmt.Errorf("unknown join mode %q (outer/inner/left/right)", s)
	}
}

// Reduce сворачивает подготовленные источники слева направо попарными
// соединениями по канонической ключевой колонке. Требуется не меньше
// двух источников. Сбой любого шага возвращается как *MergeError с
// именами пары, на которой шаг упал.
func Reduce(prepared []*Prepared, mode JoinMode) (*table.Table, error) {
	if len(prepared) < 2 {
		return nil, fmt.Errorf("reduce: need at least 2 prepared sources, got %d", len(prepared))
	}

	acc := prepared[0].Table.Clone()
	accName := prepared[0].Name
	for _, p := range prepared[1:] {
		joined, err := join(acc, p.Table, mode)
		if err != nil {
			return nil, &MergeError{Left: accName, Right: p.Name, Err: err}
		}
		acc = joined
		accName = accName + "+" + p.Name
	}
	return acc, nil
}

// join выполняет одно попарное соединение по KeyColumn. Коллизии имён
// неключевых колонок возможны только при выключенных префиксах - это
// ответственность вызывающего, здесь они не проверяются.
func join(left, right *table.Table, mode JoinMode) (*table.Table, error) {
	leftKey := left.ColumnIndex(KeyColumn)
	rightKey := right.ColumnIndex(KeyColumn)
	if leftKey == -1 || rightKey == -1 {
		return nil, fmt.Errorf("join: key column %q missing", KeyColumn)
	}

	// Колонки результата: левые целиком, правые без ключа.
	out := table.New(left.Columns...)
	rightCols := make([]int, 0, right.ColumnCount()-1)
	for j, col := range right.Columns {
		if j == rightKey {
			continue
		}
		rightCols = append(rightCols, j)
		out.Columns = append(out.Columns, col)
	}

	leftByKey := indexByKey(left, leftKey)
	rightByKey := indexByKey(right, rightKey)

	emit := func(leftRow, rightRow int, key string) {
		row := make([]string, 0, out.ColumnCount())
		if leftRow >= 0 {
			for j := range left.Columns {
				row = append(row, left.Cell(leftRow, j))
			}
		} else {
			// Ключ пришёл только справа: левые ячейки пустые, ключ свой.
			for j := range left.Columns {
				if j == leftKey {
					row = append(row, key)
				} else {
					row = append(row, "")
				}
			}
		}
		for _, j := range rightCols {
			if rightRow >= 0 {
				row = append(row, right.Cell(rightRow, j))
			} else {
				row = append(row, "")
			}
		}
		out.AppendRow(row)
	}

	switch mode {
	case JoinInner:
		for i := range left.Rows {
			key := left.Cell(i, leftKey)
			if r, ok := rightByKey[key]; ok {
				emit(i, r, key)
			}
		}
	case JoinLeft:
		for i := range left.Rows {
			key := left.Cell(i, leftKey)
			r := -1
			if idx, ok := rightByKey[key]; ok {
				r = idx
			}
			emit(i, r, key)
		}
	case JoinRight:
		for i := range right.Rows {
			key := right.Cell(i, rightKey)
			l := -1
			if idx, ok := leftByKey[key]; ok {
				l = idx
			}
			emit(l, i, key)
		}
	case JoinOuter:
		for i := range left.Rows {
			key := left.Cell(i, leftKey)
			r := -1
			if idx, ok := rightByKey[key]; ok {
				r = idx
			}
			emit(i, r, key)
		}
		// Ключи, которых нет слева, добавляются в порядке правой стороны.
		for i := range right.Rows {
			key := right.Cell(i, rightKey)
			if _, ok := leftByKey[key]; !ok {
				emit(-1, i, key)
			}
		}
	default:
		return nil, fmt.Errorf("unknown join mode %q", mode)
	}

	return out, nil
}

// indexByKey строит отображение ключ → номер строки (первое вхождение).
func indexByKey(t *table.Table, keyIdx int) map[string]int {
	m := make(map[string]int, t.RowCount())
	for i := range t.Rows {
		key := t.Cell(i, keyIdx)
		if _, ok := m[key]; !ok {
			m[key] = i
		}
	}
	return m
}
