package executor

import "errors"

var (
	// ErrUnsupportedConnectionKind возвращается когда значение-соединение
	// не распознано: допустимы nil, строка подключения, *sql.DB, *sql.Conn,
	// *sql.Tx и *Scope
	ErrUnsupportedConnectionKind = errors.New("executor: unsupported connection kind")

	// ErrUnknownDriver возвращается когда строка подключения не подходит
	// ни под один зарегистрированный диалект
	ErrUnknownDriver = errors.New("executor: unknown driver")

	// ErrOutputNotSupported возвращается при попытке привязать выходной
	// параметр на диалекте без поддержки output-параметров
	ErrOutputNotSupported = errors.New("executor: output parameters not supported by dialect")

	// ErrProcedureNotSupported возвращается когда диалект не умеет
	// вызывать хранимые процедуры
	ErrProcedureNotSupported = errors.New("executor: stored procedures not supported by dialect")
)
