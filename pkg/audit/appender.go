package audit

import (
	"context"
	"log"
)

// Appender - интерфейс для записи audit логов
type Appender interface {
	// Append - записать audit entry
	Append(ctx context.Context, entry *Entry) error

	// Close - закрыть appender
	Close() error
}

// ConsoleAppender пишет записи в стандартный логгер процесса
type ConsoleAppender struct{}

var _ Appender = (*ConsoleAppender)(nil)

// Append - вывести запись в консоль
func (ConsoleAppender) Append(_ context.Context, entry *Entry) error {
	log.Println(entry.String())
	return nil
}

// Close ничего не делает
func (ConsoleAppender) Close() error {
	return nil
}
