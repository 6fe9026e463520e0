package table

import (
	"strings"
	"unicode"
)

// NormalizeName приводит имя колонки к канонической форме для
// сравнения: обрезает пробелы, переводит в нижний регистр и удаляет
// все символы кроме букв и цифр. Используется только для сопоставления
// и скоринга, никогда для отображения.
//
// Функция тотальна: на пустой вход возвращает пустую строку.
func NormalizeName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
