package record

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrConflictingColumn возвращается когда одна строка содержит колонку
// с одним именем но разными значениями, либо когда strict-агрегация
// обнаруживает конфликт значений.
var ErrConflictingColumn = errors.New("record: conflicting column values")

// Record представляет одну строку результата: упорядоченное отображение
// имя колонки -> значение. Порядок колонок соответствует порядку
// первого появления.
type Record struct {
	names  []string
	values map[string]Value
}

// New создает пустую запись
func New() *Record {
	return &Record{
		values: make(map[string]Value),
	}
}

// FromPairs создает запись из пар (имя, значение) в порядке следования.
// Удобно в тестах и при построении ожидаемых наборов для сравнения.
func FromPairs(pairs ...any) (*Record, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("record: odd number of arguments: %d", len(pairs))
	}
	rec := New()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("record: pair %d: name must be string, got %T", i/2, pairs[i])
		}
		rec.Set(name, FromAny(pairs[i+1]))
	}
	return rec, nil
}

// MustFromPairs - как FromPairs, но паникует при ошибке.
// Использовать только в тестах и статической инициализации.
func MustFromPairs(pairs ...any) *Record {
	rec, err := FromPairs(pairs...)
	if err != nil {
		panic(err)
	}
	return rec
}

// Set устанавливает значение колонки. Новая колонка добавляется в конец,
// существующая перезаписывается с сохранением позиции.
func (r *Record) Set(name string, v Value) {
	if _, exists := r.values[name]; !exists {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Get возвращает значение колонки и признак ее наличия
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Columns возвращает имена колонок в порядке добавления
func (r *Record) Columns() []string {
	cols := make([]string, len(r.names))
	copy(cols, r.names)
	return cols
}

// Has проверяет наличие колонки
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Len возвращает количество колонок
func (r *Record) Len() int {
	return len(r.names)
}

// Clone создает независимую копию записи
func (r *Record) Clone() *Record {
	clone := &Record{
		names:  make([]string, len(r.names)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(clone.names, r.names)
	for k, v := range r.values {
		clone.values[k] = v
	}
	return clone
}

// Equal проверяет идентичность записей: одинаковый набор колонок
// (порядок не важен) и строго равные значения
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.names) != len(other.names) {
		return false
	}
	for name, v := range r.values {
		ov, ok := other.values[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String - строковое представление записи для логов и диагностики
func (r *Record) String() string {
	if r == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{")
	for i, name := range r.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(r.values[name].Text())
	}
	sb.WriteString("}")
	return sb.String()
}

// ResultSet представляет упорядоченную последовательность строк
// одного результата
type ResultSet []*Record

// Table представляет один именованный результат команды,
// вернувшей несколько наборов строк
type Table struct {
	Name string
	Rows ResultSet
}

// TableSet представляет все наборы строк одной команды
// в порядке их получения
type TableSet []Table

// sortedKeys возвращает ключи map в стабильном порядке
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
