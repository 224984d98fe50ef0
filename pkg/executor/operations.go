package executor

import (
	"context"
	"database/sql"

	"github.com/Cruisoring/sqlkit/pkg/aggregate"
	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// NonQuery выполняет команду без результата и возвращает число
// затронутых строк
func (e *Executor) NonQuery(ctx context.Context, conn any, command string, args ...any) (int64, error) {
	return Execute(ctx, e, conn, command, CommandText, args,
		func(ctx context.Context, cmd *Command) (int64, error) {
			res, err := cmd.Exec(ctx)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		})
}

// Scalar возвращает первое значение первой строки результата;
// пустой результат дает NULL
func (e *Executor) Scalar(ctx context.Context, conn any, command string, args ...any) (record.Value, error) {
	return Execute(ctx, e, conn, command, CommandText, args,
		func(ctx context.Context, cmd *Command) (record.Value, error) {
			rows, err := cmd.Query(ctx)
			if err != nil {
				return record.Null(), err
			}
			defer rows.Close()

			if !rows.Next() {
				return record.Null(), rows.Err()
			}
			var v any
			if err := rows.Scan(&v); err != nil {
				return record.Null(), err
			}
			return record.FromAny(v), rows.Err()
		})
}

// Records выполняет запрос и материализует все строки
func (e *Executor) Records(ctx context.Context, conn any, command string, args ...any) (record.ResultSet, error) {
	return Execute(ctx, e, conn, command, CommandText, args,
		func(ctx context.Context, cmd *Command) (record.ResultSet, error) {
			rows, err := cmd.Query(ctx)
			if err != nil {
				return nil, err
			}
			defer rows.Close()
			return record.FromRows(rows)
		})
}

// Query выполняет запрос и проецирует строки на объявленный тип T
func Query[T any](ctx context.Context, e *Executor, conn any, command string, args ...any) ([]T, error) {
	rs, err := e.Records(ctx, conn, command, args...)
	if err != nil {
		return nil, err
	}
	return record.As[T](rs)
}

// Tables выполняет команду с несколькими наборами строк и возвращает
// их как именованные таблицы
func (e *Executor) Tables(ctx context.Context, conn any, command string, names []string, args ...any) (record.TableSet, error) {
	return Execute(ctx, e, conn, command, CommandText, args,
		func(ctx context.Context, cmd *Command) (record.TableSet, error) {
			rows, err := cmd.Query(ctx)
			if err != nil {
				return nil, err
			}
			defer rows.Close()
			return record.AllResultSets(rows, names)
		})
}

// MergedRecords выполняет команду с несколькими наборами строк и
// сливает их построчно по индексу согласно стратегии
func (e *Executor) MergedRecords(ctx context.Context, conn any, strategy aggregate.Strategy, command string, args ...any) (record.ResultSet, error) {
	tables, err := e.Tables(ctx, conn, command, nil, args...)
	if err != nil {
		return nil, err
	}

	sets := make([]record.ResultSet, len(tables))
	for i, t := range tables {
		sets[i] = t.Rows
	}
	return aggregate.Merge(sets, strategy)
}

// Procedure вызывает хранимую процедуру с именованными аргументами и
// возвращает строки результата вместе со значениями выходных параметров
func (e *Executor) Procedure(ctx context.Context, conn any, name string, named map[string]any) (record.ResultSet, map[string]record.Value, error) {
	type procResult struct {
		rows record.ResultSet
		outs map[string]record.Value
	}

	res, err := ExecuteNamed(ctx, e, conn, name, named,
		func(ctx context.Context, cmd *Command) (procResult, error) {
			rows, err := cmd.Query(ctx)
			if err != nil {
				return procResult{}, err
			}
			rs, err := func(rows *sql.Rows) (record.ResultSet, error) {
				defer rows.Close()
				return record.FromRows(rows)
			}(rows)
			if err != nil {
				return procResult{}, err
			}
			// Выходные параметры заполняются драйвером после полного
			// вычитывания и закрытия курсора
			return procResult{rows: rs, outs: cmd.Outputs()}, nil
		})
	if err != nil {
		return nil, nil, err
	}
	return res.rows, res.outs, nil
}
