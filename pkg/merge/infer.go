package merge

import (
	"strings"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// Скоринг ключевой колонки. Набор правил держим данными, а не
// условиями в коде: так каждое правило проверяется отдельным тестом.
//
// Сигналы по имени (после table.NormalizeName) аддитивны:
//   - точное совпадение с id-токеном  → +5
//   - суффикс "id"                    → +3
//   - известный синоним идентификатора → +2
//
// Сигналы по значениям:
//   - доля уникальных среди непустых  → ×2
//   - доля непустых среди всех строк  → ×1.5
var (
	exactIDTokens = map[string]struct{}{
		"id": {},
		"ид": {},
	}

	idSynonyms = map[string]struct{}{
		"userid":       {},
		"clientid":     {},
		"customerid":   {},
		"employeeid":   {},
		"номер":        {},
		"код":          {},
		"телефон":      {},
		"контрагент":   {},
		"табельный":    {},
		"пользователь": {},
	}
)

const (
	scoreExact      = 5.0
	scoreSuffix     = 3.0
	scoreSynonym    = 2.0
	weightUnique    = 2.0
	weightNonNull   = 1.5
	fallbackKeyName = "id"
)

// GuessKeyColumn возвращает имя колонки, наиболее похожей на ключ
// сопоставления. Это эвристика: вызывающий всегда показывает результат
// как редактируемый выбор по умолчанию, а не как окончательное решение.
// При равенстве очков побеждает первая по порядку колонка; у таблицы
// без колонок - фиксированное имя "id".
func GuessKeyColumn(t *table.Table) string {
	if t.ColumnCount() == 0 {
		return fallbackKeyName
	}

	best := t.Columns[0]
	bestScore := -1.0

	for _, col := range t.Columns {
		score := nameScore(col) + valueScore(t.Column(col))
		if score > bestScore {
			best = col
			bestScore = score
		}
	}
	return best
}

// nameScore - именная часть очков колонки.
func nameScore(name string) float64 {
	n := table.NormalizeName(name)
	score := 0.0
	if _, ok := exactIDTokens[n]; ok {
		score += scoreExact
	}
	if strings.HasSuffix(n, "id") {
		score += scoreSuffix
	}
	if _, ok := idSynonyms[n]; ok {
		score += scoreSynonym
	}
	return score
}

// valueScore - ценностная часть: уникальность и заполненность.
func valueScore(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	nonNull := 0
	distinct := make(map[string]struct{})
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonNull++
		distinct[v] = struct{}{}
	}
	if nonNull == 0 {
		return 0
	}
	uniqRatio := float64(len(distinct)) / float64(nonNull)
	nonNullRatio := float64(nonNull) / float64(len(values))
	return uniqRatio*weightUnique + nonNullRatio*weightNonNull
}
