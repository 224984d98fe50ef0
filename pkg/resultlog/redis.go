// Package resultlog публикует итог выполнения именованной операции
// (пакет команд, транзакционная область, сравнение) в Redis, откуда
// его забирает внешний оркестратор.
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Cruisoring/sqlkit/pkg/settings"
)

// Ключи настроек публикации итогов выполнения
const (
	// KeyAddress - адрес Redis (host:port); пустой адрес отключает публикацию
	KeyAddress = "resultlog_address"
	// KeyPassword - пароль Redis
	KeyPassword = "resultlog_password"
	// KeyDB - номер базы Redis
	KeyDB = "resultlog_db"
	// KeyName - имя операции, входит в Redis-ключи
	KeyName = "resultlog_name"
	// KeyTTL - время жизни state-ключа в секундах
	KeyTTL = "resultlog_ttl"
)

// Config - параметры подключения и публикации
type Config struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Name - имя операции, входит в Redis-ключи
	Name string `yaml:"name"`

	// TTL - время жизни state-ключа в секундах
	TTL int `yaml:"ttl"`
}

// ExecutionResult представляет итог выполнения, публикуемый в Redis.
//
// Redis-ключи:
//
//	SET  sqlkit:exec:<name>:state  <JSON>  EX <ttl>  — для GET-запросов оркестратора
//	PUB  sqlkit:exec:<name>                          — для event-driven маршрутизации
type ExecutionResult struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"` // "success" | "failed"
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DurationMs   int64     `json:"duration_ms"`
	RowsAffected int64     `json:"rows_affected"`
	Error        *string   `json:"error,omitempty"`
}

// RedisPublisher публикует итоги выполнения в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает новый Redis publisher на основе конфигурации
func NewRedisPublisher(config Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// FromSettings собирает publisher из настроек. Возвращает nil когда
// resultlog_address не задан - публикация итогов опциональна.
func FromSettings(p settings.Provider) *RedisPublisher {
	if p == nil {
		return nil
	}
	addr, err := p.Get(KeyAddress)
	if err != nil || addr == "" {
		return nil
	}

	cfg := Config{Address: addr, Name: "sqlkit", TTL: 3600}
	if v, err := p.Get(KeyName); err == nil && v != "" {
		cfg.Name = v
	}
	if v, err := p.Get(KeyPassword); err == nil {
		cfg.Password = v
	}
	if v, err := p.Get(KeyDB); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DB = n
		}
	}
	if v, err := p.Get(KeyTTL); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TTL = n
		}
	}
	return NewRedisPublisher(cfg)
}

// Publish публикует итог выполнения:
//   - SET sqlkit:exec:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH sqlkit:exec:<name> <JSON>             → для подписки (pub/sub)
//
// Вызывается независимо от исхода; execErr == nil означает успех.
func (p *RedisPublisher) Publish(ctx context.Context, started, finished time.Time, rowsAffected int64, execErr error) error {
	result := newResult(p.config.Name, started, finished, rowsAffected, execErr)

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, stateKey(p.config.Name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	if err := p.client.Publish(ctx, eventChannel(p.config.Name), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}
	return nil
}

// newResult собирает публикуемый итог выполнения
func newResult(name string, started, finished time.Time, rowsAffected int64, execErr error) ExecutionResult {
	result := ExecutionResult{
		Name:         name,
		Status:       "success",
		StartedAt:    started,
		FinishedAt:   finished,
		DurationMs:   finished.Sub(started).Milliseconds(),
		RowsAffected: rowsAffected,
	}
	if execErr != nil {
		result.Status = "failed"
		errStr := execErr.Error()
		result.Error = &errStr
	}
	return result
}

func stateKey(name string) string {
	return fmt.Sprintf("sqlkit:exec:%s:state", name)
}

func eventChannel(name string) string {
	return fmt.Sprintf("sqlkit:exec:%s", name)
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
