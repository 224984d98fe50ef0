// Package executor выполняет команды БД через единую точку прохода:
// разрешение скрипта, нормализация параметров, разрешение соединения,
// выполнение и гарантированное освобождение принадлежащих ресурсов.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cruisoring/sqlkit/pkg/audit"
	"github.com/Cruisoring/sqlkit/pkg/core/params"
	"github.com/Cruisoring/sqlkit/pkg/core/record"
	"github.com/Cruisoring/sqlkit/pkg/core/scripts"
	"github.com/Cruisoring/sqlkit/pkg/settings"
)

// CommandKind определяет вид команды
type CommandKind int

const (
	// CommandText - обычный SQL текст
	CommandText CommandKind = iota
	// CommandProcedure - вызов хранимой процедуры
	CommandProcedure
)

// Executor связывает настройки, резолвер скриптов и аудит.
// Нулевые поля допустимы: без Settings недоступно только подключение
// по умолчанию, без Scripts командный текст трактуется буквально,
// nil Audit отключает журналирование.
type Executor struct {
	// Settings - внешние настройки (строка подключения по умолчанию)
	Settings settings.Provider

	// Scripts - резолвер файлов скриптов
	Scripts *scripts.Resolver

	// Dialect - диалект для заимствованных соединений
	Dialect *Dialect

	// Audit - журнал операций
	Audit *audit.Logger
}

// New создает исполнитель с заданными настройками и резолвером скриптов
func New(provider settings.Provider, resolver *scripts.Resolver) *Executor {
	return &Executor{Settings: provider, Scripts: resolver}
}

// Command - подготовленная команда, передаваемая продолжению:
// текст уже переписан под диалект, аргументы привязаны
type Command struct {
	target *target
	Text   string
	Args   []any
	outs   map[string]*any
}

// Query выполняет команду и возвращает курсор строк
func (c *Command) Query(ctx context.Context) (*sql.Rows, error) {
	return c.target.q.QueryContext(ctx, c.Text, c.Args...)
}

// Exec выполняет команду без результата-курсора
func (c *Command) Exec(ctx context.Context) (sql.Result, error) {
	return c.target.q.ExecContext(ctx, c.Text, c.Args...)
}

// Dialect возвращает диалект разрешенного соединения
func (c *Command) Dialect() *Dialect {
	return c.target.dialect
}

// Outputs возвращает значения выходных параметров после выполнения
func (c *Command) Outputs() map[string]record.Value {
	out := make(map[string]record.Value, len(c.outs))
	for name, dest := range c.outs {
		out[name] = record.FromAny(*dest)
	}
	return out
}

// Execute - единая точка прохода всех операций: разрешает скрипт,
// нормализует позиционные аргументы, разрешает соединение, строит
// команду под диалект и передает ее продолжению fn. Принадлежащее
// соединение закрывается после возврата fn, в том числе при ошибке.
func Execute[T any](ctx context.Context, e *Executor, conn any, commandTextOrFile string, kind CommandKind, args []any, fn func(context.Context, *Command) (T, error)) (T, error) {
	var zero T

	text, err := e.Scripts.Resolve(ctx, commandTextOrFile)
	if err != nil {
		return zero, err
	}

	var binds []params.Binding
	if kind == CommandText {
		text, binds, err = params.Normalize(text, args)
		if err != nil {
			return zero, err
		}
	} else {
		binds = procedureBindings(args)
	}

	return run(ctx, e, conn, text, kind, binds, fn)
}

// ExecuteNamed - точка прохода для вызова хранимой процедуры с
// именованными аргументами (включая выходные параметры OUT@name)
func ExecuteNamed[T any](ctx context.Context, e *Executor, conn any, procedure string, named map[string]any, fn func(context.Context, *Command) (T, error)) (T, error) {
	var zero T

	name, err := e.Scripts.Resolve(ctx, procedure)
	if err != nil {
		return zero, err
	}
	return run(ctx, e, conn, name, CommandProcedure, params.AsBindings(named), fn)
}

// run разрешает соединение, достраивает команду и вызывает продолжение
func run[T any](ctx context.Context, e *Executor, conn any, text string, kind CommandKind, binds []params.Binding, fn func(context.Context, *Command) (T, error)) (T, error) {
	var zero T

	t, err := e.resolveTarget(ctx, conn)
	if err != nil {
		return zero, err
	}
	defer t.close()

	if kind == CommandProcedure {
		if t.dialect.ProcedureCall == nil {
			return zero, fmt.Errorf("%w: %s", ErrProcedureNotSupported, t.dialect.Name)
		}
		if text, err = t.dialect.ProcedureCall(text, binds); err != nil {
			return zero, err
		}
	}

	cmd := &Command{target: t, outs: make(map[string]*any)}
	cmd.Text, cmd.Args, err = rebind(text, binds, t.dialect.Placeholder, cmd.outs)
	if err != nil {
		return zero, err
	}

	result, err := fn(ctx, cmd)
	if err != nil {
		e.Audit.LogFailure(ctx, auditOp(kind), truncate(text), err)
		return zero, err
	}
	return result, nil
}

func auditOp(kind CommandKind) audit.Operation {
	if kind == CommandProcedure {
		return audit.OpProcedure
	}
	return audit.OpExecute
}

// procedureBindings принимает позиционную форму аргументов процедуры:
// единственная карта имя->значение или ничего
func procedureBindings(args []any) []params.Binding {
	if len(args) == 1 {
		if named, ok := args[0].(map[string]any); ok {
			return params.AsBindings(named)
		}
	}
	binds := make([]params.Binding, len(args))
	for i, v := range args {
		binds[i] = params.Binding{Name: fmt.Sprintf("p%d", i), Value: v}
	}
	return binds
}

// truncate ограничивает текст команды для записи в журнал
func truncate(text string) string {
	const limit = 120
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
