package audit

import (
	"context"
	"errors"
)

// Logger рассылает записи аудита по подключенным appenders.
// Nil-логгер безопасен: все методы молча ничего не делают, поэтому
// аудит всегда опционален для вызывающего кода.
type Logger struct {
	appenders []Appender
}

// NewLogger - создать логгер с заданными appenders
func NewLogger(appenders ...Appender) *Logger {
	return &Logger{appenders: appenders}
}

// Log - записать entry во все appenders; ошибки собираются, запись
// в остальные appenders продолжается
func (l *Logger) Log(ctx context.Context, entry *Entry) error {
	if l == nil || entry == nil {
		return nil
	}
	var errs []error
	for _, a := range l.appenders {
		if err := a.Append(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSuccess - записать успешную операцию
func (l *Logger) LogSuccess(ctx context.Context, op Operation, resource string) {
	if l == nil {
		return
	}
	_ = l.Log(ctx, NewEntry(op, StatusSuccess).WithResource(resource))
}

// LogFailure - записать неудачную операцию
func (l *Logger) LogFailure(ctx context.Context, op Operation, resource string, err error) {
	if l == nil {
		return
	}
	_ = l.Log(ctx, NewEntry(op, StatusFailure).WithResource(resource).WithError(err))
}

// Close - закрыть все appenders
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	var errs []error
	for _, a := range l.appenders {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
