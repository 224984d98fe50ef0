// Package delta рекурсивно сравнивает записи и коллекции записей,
// строя дерево различий с учетом межтиповых эквивалентностей.
package delta

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

var (
	// ErrKeyArity возвращается когда составной ключ корреляции содержит
	// больше четырех полей
	ErrKeyArity = errors.New("delta: composite key supports at most 4 fields")

	// ErrConvert возвращается когда компаратор эквивалентности не смог
	// разобрать значение (число, дата)
	ErrConvert = errors.New("delta: value conversion failed")
)

// Change - одно зафиксированное различие: либо Delta (листовое),
// либо Composite (вложенное дерево)
type Change interface {
	isChange()
	String() string
}

// Delta - листовое различие двух значений. Пустое имя стороны кодирует
// отсутствие значения на этой стороне. Delta между эквивалентными
// значениями никогда не создается.
type Delta struct {
	LeftName  string
	RightName string
	Left      record.Value
	Right     record.Value
}

// NewDelta создает различие двух присутствующих значений
func NewDelta(name string, left, right record.Value) Delta {
	return Delta{LeftName: name, RightName: name, Left: left, Right: right}
}

// OnlyLeft создает различие "есть только слева"
func OnlyLeft(name string, left record.Value) Delta {
	return Delta{LeftName: name, Left: left}
}

// OnlyRight создает различие "есть только справа"
func OnlyRight(name string, right record.Value) Delta {
	return Delta{RightName: name, Right: right}
}

// IsMissingLeft сообщает что значение отсутствует на левой стороне
func (d Delta) IsMissingLeft() bool {
	return d.LeftName == ""
}

// IsMissingRight сообщает что значение отсутствует на правой стороне
func (d Delta) IsMissingRight() bool {
	return d.RightName == ""
}

func (d Delta) isChange() {}

// String - представление различия для отчетов
func (d Delta) String() string {
	switch {
	case d.IsMissingLeft():
		return fmt.Sprintf("missing left, right=%q", d.Right.Text())
	case d.IsMissingRight():
		return fmt.Sprintf("left=%q, missing right", d.Left.Text())
	default:
		return fmt.Sprintf("left=%q, right=%q", d.Left.Text(), d.Right.Text())
	}
}

// Composite - вложенное дерево различий (рекурсивное сравнение записей
// или последовательностей)
type Composite struct {
	Key     string
	Changes Report
}

func (c Composite) isChange() {}

// String - представление вложенного дерева
func (c Composite) String() string {
	return fmt.Sprintf("%s: %s", c.Key, c.Changes.Format())
}

// Report - различия, сгруппированные по ключу сравнения (имени поля
// или ключу корреляции)
type Report map[string][]Change

// Empty сообщает что различий нет
func (r Report) Empty() bool {
	return len(r) == 0
}

// add дописывает различие по ключу
func (r Report) add(key string, c Change) {
	r[key] = append(r[key], c)
}

// Format - компактное текстовое представление отчета с
// детерминированным порядком ключей
func (r Report) Format() string {
	if r.Empty() {
		return "{}"
	}
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		for j, c := range r[k] {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
	}
	sb.WriteString("}")
	return sb.String()
}
