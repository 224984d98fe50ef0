package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cruisoring/sqlkit/pkg/audit"
	"github.com/Cruisoring/sqlkit/pkg/settings"
)

// queryer - общая поверхность *sql.DB, *sql.Conn и *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ queryer = (*sql.DB)(nil)
	_ queryer = (*sql.Conn)(nil)
	_ queryer = (*sql.Tx)(nil)
)

// target - разрешенный контекст выполнения: обработчик запросов,
// владение соединением и диалект движка
type target struct {
	q       queryer
	db      *sql.DB // закрывается после выполнения при owned
	owned   bool
	dialect *Dialect
}

// close освобождает принадлежащие ресурсы
func (t *target) close() {
	if t.owned && t.db != nil {
		t.db.Close()
	}
}

// resolveTarget распознает значение-соединение по его форме:
// nil или строка подключения - открыть новое соединение (owned),
// заимствованные *sql.DB / *sql.Conn / *sql.Tx и *Scope переиспользуются
// и никогда не закрываются этим слоем
func (e *Executor) resolveTarget(ctx context.Context, conn any) (*target, error) {
	switch c := conn.(type) {
	case nil:
		dsn, err := e.defaultDSN()
		if err != nil {
			return nil, err
		}
		return e.open(ctx, dsn)

	case string:
		// Пустая строка равнозначна nil - подключение по умолчанию
		if c == "" {
			return e.resolveTarget(ctx, nil)
		}
		return e.open(ctx, c)

	case *sql.DB:
		return e.borrow(c)
	case *sql.Conn:
		return e.borrow(c)
	case *sql.Tx:
		return e.borrow(c)

	case *Scope:
		if c.tx == nil {
			return nil, fmt.Errorf("executor: scope is closed")
		}
		return &target{q: c.tx, dialect: c.dialect}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedConnectionKind, conn)
	}
}

// defaultDSN возвращает строку подключения по умолчанию; исполнитель
// без настроек ее не имеет
func (e *Executor) defaultDSN() (string, error) {
	if e.Settings == nil {
		return "", fmt.Errorf("%w: %s", settings.ErrMissingSetting, settings.KeyConnectionString)
	}
	return e.Settings.Get(settings.KeyConnectionString)
}

// borrow оборачивает внешнее соединение; диалект приходится брать из
// конфигурации исполнителя, по открытому хэндлу его не определить
func (e *Executor) borrow(q queryer) (*target, error) {
	if e.Dialect == nil {
		return nil, fmt.Errorf("%w: executor has no default dialect for borrowed connection", ErrUnknownDriver)
	}
	return &target{q: q, dialect: e.Dialect}, nil
}

// open открывает новое соединение по строке подключения
func (e *Executor) open(ctx context.Context, dsn string) (*target, error) {
	d, err := DetectDialect(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		e.Audit.LogFailure(ctx, audit.OpConnect, d.Name, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", d.Name, err)
	}

	return &target{q: db, db: db, owned: true, dialect: d}, nil
}
