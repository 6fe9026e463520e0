package table

import (
	"strconv"
	"strings"
	"time"
)

// DataType - выведенный тип колонки. Используется при построении
// фильтров: от типа зависит, какой предикат применим к колонке.
type DataType string

const (
	TypeNumber   DataType = "number"
	TypeDatetime DataType = "datetime"
	TypeBool     DataType = "bool"
	TypeCategory DataType = "category"
	TypeText     DataType = "text"
)

// categoryThreshold - максимум различных значений, при котором текстовая
// колонка считается категориальной.
const categoryThreshold = 50

// dateLayouts - поддерживаемые форматы дат при разборе ячеек.
// Excel-даты excelize уже возвращает в текстовом виде.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
}

// ParseNumber разбирает числовую ячейку. Запятая как десятичный
// разделитель допускается: xlsx из русскоязычного Excel встречается
// чаще прочих.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTime разбирает ячейку с датой/временем по известным форматам.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

// ParseBool разбирает булеву ячейку: true/false, TRUE/FALSE, 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// InferColumnType выводит тип колонки по её значениям. Пустые ячейки
// (null) не участвуют в выводе. Порядок проверки: bool → number →
// datetime → category → text; колонка без единого непустого значения
// считается текстовой.
func InferColumnType(values []string) DataType {
	nonNull := 0
	numbers, times, bools := 0, 0, 0
	distinct := make(map[string]struct{})

	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		nonNull++
		distinct[v] = struct{}{}
		if _, ok := ParseBool(v); ok {
			bools++
		}
		if _, ok := ParseNumber(v); ok {
			numbers++
		}
		if _, ok := ParseTime(v); ok {
			times++
		}
	}

	if nonNull == 0 {
		return TypeText
	}
	// "1"/"0" разбираются и как bool, и как number; колонка булева
	// только если ничего кроме булевых значений в ней нет и значений
	// не больше двух различных.
	if bools == nonNull && len(distinct) <= 2 {
		return TypeBool
	}
	if numbers == nonNull {
		return TypeNumber
	}
	if times == nonNull {
		return TypeDatetime
	}
	if len(distinct) <= categoryThreshold {
		return TypeCategory
	}
	return TypeText
}
