package record

import (
	"database/sql"
	"fmt"
)

// FromRows вычитывает курсор построчно в ResultSet.
// Повторные колонки с одинаковым именем схлопываются если значения
// строго равны; расхождение значений - ошибка ErrConflictingColumn.
// Курсор не закрывается: владение остается у вызывающего кода.
func FromRows(rows *sql.Rows) (ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	scanArgs := make([]any, len(cols))
	for i := range scanArgs {
		var v any
		scanArgs[i] = &v
	}

	var result ResultSet
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := New()
		for i, col := range cols {
			v := FromAny(*(scanArgs[i].(*any)))
			if existing, ok := rec.Get(col); ok {
				if !existing.Equal(v) {
					return nil, fmt.Errorf("%w: column %q in row %d: %q vs %q",
						ErrConflictingColumn, col, len(result), existing.Text(), v.Text())
				}
				continue
			}
			rec.Set(col, v)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}
	return result, nil
}

// AllResultSets вычитывает все наборы строк команды, вернувшей несколько
// результатов. Имена берутся из names по индексу; недостающие имена
// генерируются как Table0, Table1, ...
func AllResultSets(rows *sql.Rows, names []string) (TableSet, error) {
	var tables TableSet
	for i := 0; ; i++ {
		rs, err := FromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("result set %d: %w", i, err)
		}

		name := fmt.Sprintf("Table%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		tables = append(tables, Table{Name: name, Rows: rs})

		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error advancing result sets: %w", err)
	}
	return tables, nil
}
