// Package aggregate сливает параллельные наборы строк в единые записи
// построчно по индексу строки.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// ErrRowCountMismatch возвращается когда Strict-слияние встречает
// таблицы разной длины
var ErrRowCountMismatch = errors.New("aggregate: row count mismatch")

// Strategy определяет политику разрешения конфликтов колонок
type Strategy int

const (
	// Override - последняя запись побеждает
	Override Strategy = iota
	// Strict - расхождение числа строк или значений - ошибка
	Strict
	// Ignore - первая запись побеждает
	Ignore
)

// String - строковое представление стратегии
func (s Strategy) String() string {
	switch s {
	case Override:
		return "override"
	case Strict:
		return "strict"
	case Ignore:
		return "ignore"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Merge сливает таблицы построчно: запись i результата собирается из
// записей i всех таблиц. Новые колонки добавляются; совпадающие значения
// пропускаются; конфликт значений разрешается стратегией: Override
// заменяет, Ignore оставляет существующее, Strict возвращает
// record.ErrConflictingColumn. Strict также требует одинаковое число
// строк во всех таблицах.
func Merge(tables []record.ResultSet, strategy Strategy) (record.ResultSet, error) {
	if len(tables) == 0 {
		return nil, nil
	}

	if strategy == Strict {
		for i, t := range tables[1:] {
			if len(t) != len(tables[0]) {
				return nil, fmt.Errorf("%w: table 0 has %d rows, table %d has %d",
					ErrRowCountMismatch, len(tables[0]), i+1, len(t))
			}
		}
	}

	merged := make(record.ResultSet, 0, len(tables[0]))
	for _, row := range tables[0] {
		merged = append(merged, row.Clone())
	}

	for ti, table := range tables[1:] {
		for ri, row := range table {
			if ri >= len(merged) {
				// Strict отсечен проверкой выше
				merged = append(merged, record.New())
			}
			if err := mergeRow(merged[ri], row, strategy, ti+1, ri); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

// mergeRow вливает колонки row в acc согласно стратегии
func mergeRow(acc, row *record.Record, strategy Strategy, table, index int) error {
	for _, col := range row.Columns() {
		v, _ := row.Get(col)
		existing, ok := acc.Get(col)
		if !ok {
			acc.Set(col, v)
			continue
		}
		if existing.Equal(v) {
			continue
		}

		switch strategy {
		case Override:
			acc.Set(col, v)
		case Ignore:
			// первая запись побеждает
		case Strict:
			return fmt.Errorf("%w: column %q in table %d row %d: %q vs %q",
				record.ErrConflictingColumn, col, table, index, existing.Text(), v.Text())
		}
	}
	return nil
}
