// Package filter применяет декларативные фильтры к таблицам перед
// объединением.
//
// Спецификация фильтра - отображение имени колонки в типизированный
// предикат: числовой диапазон, диапазон дат, принадлежность множеству,
// равенство булеву значению или поиск подстроки без учёта регистра.
// На колонку допускается один предикат; предикаты разных колонок
// соединяются логическим AND.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// NullSentinel - значение в Values, обозначающее «совпадает с
// отсутствующим значением». Пустая ячейка и есть null в модели table.
const NullSentinel = ""

// Predicate - один типизированный предикат. Заполняется ровно одна
// группа полей; Kind определяет, какая.
type Predicate struct {
	Kind table.DataType `yaml:"kind"`

	// TypeNumber: включительно с обеих сторон; nil - без ограничения.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`

	// TypeDatetime: включительно; nil - без ограничения.
	Start *time.Time `yaml:"start,omitempty"`
	End   *time.Time `yaml:"end,omitempty"`

	// TypeCategory: множество допустимых значений. NullSentinel в
	// списке означает совпадение с пустой ячейкой.
	Values []string `yaml:"values,omitempty"`

	// TypeBool: требуемое значение.
	Equals *bool `yaml:"equals,omitempty"`

	// TypeText: подстрока без учёта регистра; null не совпадает.
	Contains string `yaml:"contains,omitempty"`
}

// Spec - набор предикатов одного источника: имя колонки → предикат.
type Spec map[string]Predicate

// Validate проверяет, что каждый предикат внутренне согласован.
func (s Spec) Validate() error {
	for col, p := range s {
		switch p.Kind {
		case table.TypeNumber, table.TypeDatetime, table.TypeCategory, table.TypeBool, table.TypeText:
			// ок
		default:
			return fmt.Errorf("filter %q: unknown kind %q", col, p.Kind)
		}
		if p.Kind == table.TypeCategory && len(p.Values) == 0 {
			return fmt.Errorf("filter %q: category predicate needs at least one value", col)
		}
		if p.Kind == table.TypeBool && p.Equals == nil {
			return fmt.Errorf("filter %q: bool predicate needs equals", col)
		}
	}
	return nil
}

// KindMismatches сравнивает объявленный тип каждого предиката с типом,
// выведенным по значениям колонки. Расхождение - предупреждение, а не
// ошибка: предикат всё равно применяется, но числовой фильтр поверх
// текстовой колонки почти наверняка опечатка в конфиге.
func KindMismatches(t *table.Table, s Spec) []string {
	var out []string
	for _, col := range t.Columns {
		p, ok := s[col]
		if !ok {
			continue
		}
		inferred := table.InferColumnType(t.Column(col))
		if inferred != p.Kind {
			out = append(out, fmt.Sprintf("column %q: predicate kind %q, values look like %q", col, p.Kind, inferred))
		}
	}
	return out
}

// Apply возвращает новую таблицу из строк, удовлетворяющих всем
// предикатам. Предикаты на отсутствующие колонки молча пропускаются.
// Вход не изменяется.
func Apply(t *table.Table, spec Spec) *table.Table {
	if len(spec) == 0 {
		return t.Clone()
	}

	// Индексы колонок резолвим один раз, до прохода по строкам.
	type bound struct {
		idx  int
		pred Predicate
	}
	bounds := make([]bound, 0, len(spec))
	for _, col := range t.Columns {
		if p, ok := spec[col]; ok {
			bounds = append(bounds, bound{idx: t.ColumnIndex(col), pred: p})
		}
	}

	out := table.New(t.Columns...)
	for i := range t.Rows {
		match := true
		for _, b := range bounds {
			if !matches(t.Cell(i, b.idx), b.pred) {
				match = false
				break
			}
		}
		if match {
			out.AppendRow(t.Rows[i])
		}
	}
	return out
}

// matches проверяет одну ячейку против одного предиката.
func matches(cell string, p Predicate) bool {
	switch p.Kind {
	case table.TypeNumber:
		v, ok := table.ParseNumber(cell)
		if !ok {
			return false // null и нечисловой мусор не попадают в диапазон
		}
		if p.Min != nil && v < *p.Min {
			return false
		}
		if p.Max != nil && v > *p.Max {
			return false
		}
		return true

	case table.TypeDatetime:
		v, ok := table.ParseTime(cell)
		if !ok {
			return false
		}
		if p.Start != nil && v.Before(*p.Start) {
			return false
		}
		if p.End != nil && v.After(*p.End) {
			return false
		}
		return true

	case table.TypeCategory:
		cell = strings.TrimSpace(cell)
		for _, allowed := range p.Values {
			if allowed == NullSentinel {
				if cell == "" {
					return true
				}
				continue
			}
			if cell == allowed {
				return true
			}
		}
		return false

	case table.TypeBool:
		v, ok := table.ParseBool(cell)
		if !ok || p.Equals == nil {
			return false
		}
		return v == *p.Equals

	case table.TypeText:
		sub := strings.TrimSpace(p.Contains)
		if sub == "" {
			return true // пустой поиск ничего не ограничивает
		}
		if strings.TrimSpace(cell) == "" {
			return false // null не содержит подстрок
		}
		return strings.Contains(strings.ToLower(cell), strings.ToLower(sub))

	default:
		// Неизвестный предикат не должен пройти Validate; здесь - no-op.
		return true
	}
}
