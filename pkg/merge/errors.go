package merge

import "fmt"

// MissingKeyColumnError - выбранная ключевая колонка отсутствует в
// источнике после отбора колонок. Операция прерывается целиком.
type MissingKeyColumnError struct {
	Source string // отображаемое имя источника
	Column string // имя отсутствующей колонки
}

func (e *MissingKeyColumnError) Error() string {
	return fmt.Sprintf("source %q: key column %q not found after column selection", e.Source, e.Column)
}

// MergeError - сбой на одном из попарных шагов свёртки. Несёт имена
// пары источников, на которых шаг упал.
type MergeError struct {
	Left  string
	Right string
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %q with %q: %v", e.Left, e.Right, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// DuplicateKeyWarning - не ошибка: дубликаты ключа разрешены
// автоматически (остаётся первое вхождение), количество сообщается
// вызывающему для отображения.
type DuplicateKeyWarning struct {
	Source string
	Count  int
}

func (w DuplicateKeyWarning) String() string {
	return fmt.Sprintf("source %q: %d duplicate key value(s), keeping first occurrence", w.Source, w.Count)
}
