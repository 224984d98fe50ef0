// Package settings предоставляет внешние настройки слоя доступа к данным:
// единый интерфейс Get(key) поверх карты, переменных окружения и yaml-файла.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingSetting возвращается когда запрошенный ключ отсутствует
var ErrMissingSetting = errors.New("settings: missing setting")

// Стандартные ключи настроек
const (
	// KeyConnectionString - строка подключения по умолчанию
	KeyConnectionString = "connection_string"
	// KeyScriptsDir - каталог файлов скриптов
	KeyScriptsDir = "scripts_dir"

	// KeyScriptsS3Bucket - бакет S3 с файлами скриптов; пустое значение
	// отключает источник S3
	KeyScriptsS3Bucket = "scripts_s3_bucket"
	// KeyScriptsS3Prefix - префикс объектов скриптов в бакете
	KeyScriptsS3Prefix = "scripts_s3_prefix"
	// KeyScriptsS3Region - регион AWS бакета
	KeyScriptsS3Region = "scripts_s3_region"
	// KeyScriptsS3Endpoint - нестандартный endpoint (minio и совместимые)
	KeyScriptsS3Endpoint = "scripts_s3_endpoint"
)

// Provider отдает значение настройки по ключу
type Provider interface {
	Get(key string) (string, error)
}

// Map - провайдер поверх обычной карты
type Map map[string]string

// Get возвращает значение ключа из карты
func (m Map) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}
	return v, nil
}

// Env - провайдер поверх переменных окружения: ключ переводится
// в верхний регистр и дополняется префиксом (SQLKIT_CONNECTION_STRING)
type Env struct {
	Prefix string
}

// Get читает настройку из окружения
func (e Env) Get(key string) (string, error) {
	name := e.Prefix + strings.ToUpper(key)
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: %s (env %s)", ErrMissingSetting, key, name)
	}
	return v, nil
}

// Chain опрашивает провайдеры по порядку до первого найденного значения
type Chain []Provider

// Get возвращает первое найденное значение; ErrMissingSetting только
// если ключ отсутствует во всех провайдерах
func (c Chain) Get(key string) (string, error) {
	for _, p := range c {
		v, err := p.Get(key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrMissingSetting) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingSetting, key)
}

// LoadFile читает настройки из yaml-файла с плоской картой ключей
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}
