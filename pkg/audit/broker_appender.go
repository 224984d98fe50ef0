package audit

import (
	"context"
	"fmt"

	"github.com/Cruisoring/sqlkit/pkg/brokers"
)

// BrokerAppender публикует записи аудита во внешнюю очередь сообщений
type BrokerAppender struct {
	broker brokers.MessageBroker
}

var _ Appender = (*BrokerAppender)(nil)

// NewBrokerAppender создает appender поверх подключенного брокера
func NewBrokerAppender(ctx context.Context, cfg brokers.Config) (*BrokerAppender, error) {
	b, err := brokers.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := b.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}
	return &BrokerAppender{broker: b}, nil
}

// Append - опубликовать entry как JSON сообщение
func (a *BrokerAppender) Append(ctx context.Context, entry *Entry) error {
	data, err := entry.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	return a.broker.Send(ctx, data)
}

// Close - закрыть соединение с брокером
func (a *BrokerAppender) Close() error {
	return a.broker.Close()
}
