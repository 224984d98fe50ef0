// Package scripts разрешает командный текст: литеральный SQL передается
// как есть, имена файлов *.sql читаются из настроенных источников и
// кэшируются на весь процесс.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Suffix - расширение файлов скриптов; только строки с этим суффиксом
// трактуются как ссылки на файл
const Suffix = ".sql"

// ErrScriptNotFound возвращается когда скрипт не найден ни по литеральному
// пути, ни в одном из источников
var ErrScriptNotFound = errors.New("scripts: script not found")

// cache - общий для процесса кэш текстов скриптов: ключ - имя в нижнем
// регистре, записи добавляются один раз и никогда не вытесняются
var cache sync.Map

// Source читает содержимое скрипта по имени
type Source interface {
	Read(ctx context.Context, name string) (string, error)
}

// DirSource читает скрипты из каталога на диске
type DirSource struct {
	Dir string
}

// Read читает файл скрипта из каталога
func (s DirSource) Read(_ context.Context, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read script %s: %w", name, err)
	}
	return string(data), nil
}

// Resolver разрешает командный текст через цепочку источников
type Resolver struct {
	sources []Source
}

// NewResolver создает резолвер с заданной цепочкой источников.
// Источники опрашиваются по порядку до первого успеха.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve возвращает текст команды. Строка без суффикса .sql возвращается
// без изменений. Иначе: кэш, литеральный путь, источники по порядку;
// найденный текст кэшируется под именем в нижнем регистре.
func (r *Resolver) Resolve(ctx context.Context, commandTextOrFile string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(commandTextOrFile), Suffix) {
		return commandTextOrFile, nil
	}

	name := commandTextOrFile
	if err := validateName(name); err != nil {
		return "", err
	}

	key := strings.ToLower(name)
	if text, ok := cache.Load(key); ok {
		return text.(string), nil
	}

	// Литеральный путь относительно рабочего каталога
	if data, err := os.ReadFile(name); err == nil {
		text := string(data)
		cache.Store(key, text)
		return text, nil
	}

	if r != nil {
		for _, src := range r.sources {
			text, err := src.Read(ctx, name)
			if err != nil {
				continue
			}
			cache.Store(key, text)
			return text, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
}

// validateName отклоняет имена с выходом за пределы каталога источника
func validateName(name string) error {
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: path traversal in script name %q", ErrScriptNotFound, name)
	}
	return nil
}
