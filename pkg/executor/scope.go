package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Cruisoring/sqlkit/pkg/audit"
	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// ScopeOptions настраивает транзакционную область
type ScopeOptions struct {
	// Conn - nil (подключение по умолчанию) или строка подключения.
	// Область всегда владеет своим соединением.
	Conn any

	// Timeout добавляется в строку подключения, если диалект это умеет
	Timeout time.Duration

	// AutoCommit - фиксировать транзакцию при Close; иначе откат
	AutoCommit bool

	// Name - имя области для журнала аудита
	Name string
}

// Scope - транзакционная область: одно соединение, одна транзакция,
// последовательность выполнений, ровно один commit или rollback при
// освобождении. Не предназначена для конкурентного использования.
type Scope struct {
	exec       *Executor
	db         *sql.DB
	tx         *sql.Tx
	dialect    *Dialect
	name       string
	autoCommit bool
	rolledBack bool
	closed     bool
}

// BeginScope открывает соединение и начинает транзакцию
func (e *Executor) BeginScope(ctx context.Context, opts ScopeOptions) (*Scope, error) {
	var dsn string
	switch c := opts.Conn.(type) {
	case nil:
		v, err := e.defaultDSN()
		if err != nil {
			return nil, err
		}
		dsn = v
	case string:
		dsn = c
		if dsn == "" {
			v, err := e.defaultDSN()
			if err != nil {
				return nil, err
			}
			dsn = v
		}
	default:
		return nil, fmt.Errorf("%w: scope requires nil or connection string, got %T",
			ErrUnsupportedConnectionKind, opts.Conn)
	}

	d, err := DetectDialect(dsn)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 && d.WithTimeout != nil {
		dsn = d.WithTimeout(dsn, opts.Timeout)
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d.Name, err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		e.Audit.LogFailure(ctx, audit.OpTransaction, opts.Name, err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	e.Audit.LogSuccess(ctx, audit.OpTransaction, opts.Name)
	return &Scope{
		exec:       e,
		db:         db,
		tx:         tx,
		dialect:    d,
		name:       opts.Name,
		autoCommit: opts.AutoCommit,
	}, nil
}

// Execute выполняет команду внутри транзакции области. При ошибке
// транзакция откатывается ровно один раз; сбой самого отката
// журналируется, но исходная ошибка всегда остается той, что видит
// вызывающий код.
func (s *Scope) Execute(ctx context.Context, command string, args ...any) (int64, error) {
	if s.rolledBack {
		return 0, fmt.Errorf("executor: scope %q already rolled back", s.name)
	}
	if s.closed {
		return 0, fmt.Errorf("executor: scope %q is closed", s.name)
	}

	n, err := s.exec.NonQuery(ctx, s, command, args...)
	if err != nil {
		s.rollback(ctx)
		return 0, err
	}
	return n, nil
}

// Records выполняет запрос внутри транзакции области
func (s *Scope) Records(ctx context.Context, command string, args ...any) (record.ResultSet, error) {
	if s.rolledBack {
		return nil, fmt.Errorf("executor: scope %q already rolled back", s.name)
	}
	if s.closed {
		return nil, fmt.Errorf("executor: scope %q is closed", s.name)
	}

	rs, err := s.exec.Records(ctx, s, command, args...)
	if err != nil {
		s.rollback(ctx)
		return nil, err
	}
	return rs, nil
}

// rollback откатывает транзакцию один раз, журналируя вторичный сбой
func (s *Scope) rollback(ctx context.Context) {
	if s.rolledBack {
		return
	}
	s.rolledBack = true
	if err := s.tx.Rollback(); err != nil {
		s.exec.Audit.LogFailure(ctx, audit.OpRollback, s.name, err)
		return
	}
	s.exec.Audit.LogSuccess(ctx, audit.OpRollback, s.name)
}

// Close освобождает область: commit при AutoCommit, иначе rollback;
// соединение закрывается последним шагом независимо от исхода.
// Возвращается только ошибка commit; вторичные сбои журналируются.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	ctx := context.Background()

	var commitErr error
	if !s.rolledBack {
		if s.autoCommit {
			if err := s.tx.Commit(); err != nil {
				commitErr = fmt.Errorf("failed to commit transaction %q: %w", s.name, err)
				s.exec.Audit.LogFailure(ctx, audit.OpCommit, s.name, err)
			} else {
				s.exec.Audit.LogSuccess(ctx, audit.OpCommit, s.name)
			}
		} else {
			if err := s.tx.Rollback(); err != nil {
				s.exec.Audit.LogFailure(ctx, audit.OpRollback, s.name, err)
			} else {
				s.exec.Audit.LogSuccess(ctx, audit.OpRollback, s.name)
			}
		}
	}

	if err := s.db.Close(); err != nil {
		s.exec.Audit.LogFailure(ctx, audit.OpConnect, s.name, err)
	}
	s.tx = nil
	return commitErr
}
