// Package params разбирает плейсхолдеры командного текста и строит
// привязки параметров для исполнителя.
package params

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrArgumentCountMismatch возвращается когда количество различных
// плейсхолдеров в команде не совпадает с количеством аргументов
var ErrArgumentCountMismatch = errors.New("params: placeholder/argument count mismatch")

// Direction определяет направление параметра
type Direction int

const (
	// In - входной параметр
	In Direction = iota
	// Out - выходной параметр (только хранимые процедуры)
	Out
)

// String - строковое представление направления
func (d Direction) String() string {
	if d == Out {
		return "OUT"
	}
	return "IN"
}

// Binding представляет один разрешенный параметр команды.
// Name хранится без сигила @.
type Binding struct {
	Name      string
	Value     any
	Direction Direction
	TypeTag   string
}

// TokenPattern - шаблон плейсхолдера: сигил @ и идентификатор
var TokenPattern = regexp.MustCompile(`@\w+`)

// Normalize находит плейсхолдеры команды, сопоставляет их с позиционными
// аргументами и возвращает переписанный текст вместе с привязками.
//
// Плейсхолдеры дедуплицируются по имени без учета регистра с сохранением
// порядка первого вхождения; количество различных имен должно совпадать
// с len(args). Аргумент-последовательность ([]T) разворачивается в
// индексированные привязки name0..nameN-1, а исходный плейсхолдер
// заменяется на их список через запятую. nil привязывается как NULL.
//
// Известное ограничение: перезапись - буквальная подстановка подстрок.
// Имена параметров, являющиеся префиксами других имен (@id и @identifier),
// приводят к неверной перезаписи и должны избегаться вызывающим кодом.
func Normalize(command string, args []any) (string, []Binding, error) {
	tokens := TokenPattern.FindAllString(command, -1)

	// Дедупликация без учета регистра, порядок первого вхождения
	var names []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		key := strings.ToLower(tok)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, tok)
	}

	if len(names) != len(args) {
		return "", nil, fmt.Errorf("%w: %d distinct placeholders, %d arguments",
			ErrArgumentCountMismatch, len(names), len(args))
	}
	if len(names) == 0 {
		return command, nil, nil
	}

	var bindings []Binding
	rewritten := command
	for i, token := range names {
		name := token[1:] // без сигила

		if items, ok := asSequence(args[i]); ok {
			indexed := make([]string, len(items))
			for j, item := range items {
				bindings = append(bindings, Binding{
					Name:  fmt.Sprintf("%s%d", name, j),
					Value: item,
				})
				indexed[j] = fmt.Sprintf("@%s%d", name, j)
			}
			rewritten = strings.ReplaceAll(rewritten, token, strings.Join(indexed, ","))
			continue
		}

		bindings = append(bindings, Binding{Name: name, Value: args[i]})
	}

	return rewritten, bindings, nil
}

// asSequence распознает аргументы-последовательности.
// Строки и байтовые срезы последовательностями не считаются.
func asSequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return items, true
	case []int:
		items := make([]any, len(x))
		for i, n := range x {
			items[i] = n
		}
		return items, true
	case []int64:
		items := make([]any, len(x))
		for i, n := range x {
			items[i] = n
		}
		return items, true
	case []float64:
		items := make([]any, len(x))
		for i, f := range x {
			items[i] = f
		}
		return items, true
	default:
		return nil, false
	}
}
