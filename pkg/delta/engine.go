package delta

import (
	"fmt"
	"strings"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// Equivalence - межтиповой компаратор: сообщает эквивалентны ли два
// значения разных типов (эпоха против даты, строка против числа)
type Equivalence func(a, b record.Value) (bool, error)

type pairKey struct {
	a, b record.Kind
}

// Engine сравнивает записи. Компараторы эквивалентности регистрируются
// по упорядоченной паре типов и проверяются в обоих порядках.
type Engine struct {
	comparers map[pairKey]Equivalence
}

// NewEngine создает движок со стандартным набором компараторов:
// числовые кроссы, эпоха/строка против даты, булево против числа и строки
func NewEngine() *Engine {
	e := &Engine{comparers: make(map[pairKey]Equivalence)}
	registerDefaults(e)
	return e
}

// Register добавляет компаратор для пары типов
func (e *Engine) Register(a, b record.Kind, fn Equivalence) {
	e.comparers[pairKey{a, b}] = fn
}

// Фиксированные "всегда равные" пары: NULL против пустой строки и
// NULL против пустого BLOB, в обоих порядках
func sentinelEqual(a, b record.Value) bool {
	if a.Kind > b.Kind {
		a, b = b, a
	}
	if a.Kind != record.KindNull {
		return false
	}
	switch b.Kind {
	case record.KindNull:
		return false // обе NULL - обычное равенство, не sentinel
	case record.KindString:
		return b.Str == ""
	case record.KindBlob:
		return len(b.Blob) == 0
	default:
		return false
	}
}

// Diff сравнивает две записи по общим колонкам: колонки, присутствующие
// только на одной стороне, не сравниваются (корреляцию целых коллекций
// с отчетом об односторонних элементах выполняет DiffCollections).
func (e *Engine) Diff(left, right *record.Record) (Report, error) {
	report := make(Report)
	for _, col := range left.Columns() {
		rv, ok := right.Get(col)
		if !ok {
			continue
		}
		lv, _ := left.Get(col)

		change, err := e.diffValue(col, lv, rv)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		if change != nil {
			report.add(col, change)
		}
	}
	return report, nil
}

// diffValue сравнивает пару значений; nil означает эквивалентность
func (e *Engine) diffValue(key string, l, r record.Value) (Change, error) {
	if sentinelEqual(l, r) {
		return nil, nil
	}

	// Ровно одна сторона NULL - различие с значением другой стороны
	if l.IsNull() != r.IsNull() {
		return NewDelta(key, l, r), nil
	}

	// Вложенные записи сравниваются рекурсивно
	if l.Kind == record.KindRecord && r.Kind == record.KindRecord {
		nested, err := e.Diff(l.Rec, r.Rec)
		if err != nil {
			return nil, err
		}
		if nested.Empty() {
			return nil, nil
		}
		return Composite{Key: key, Changes: nested}, nil
	}

	// Последовательности коррелируются по позиции
	if l.Kind == record.KindList && r.Kind == record.KindList {
		return e.diffLists(key, l.List, r.List)
	}

	if l.Equal(r) {
		return nil, nil
	}

	// Текстовое равенство без учета окружающих пробелов
	if strings.TrimSpace(l.Text()) == strings.TrimSpace(r.Text()) {
		return nil, nil
	}

	// Межтиповая эквивалентность, оба порядка
	if fn, ok := e.comparers[pairKey{l.Kind, r.Kind}]; ok {
		eq, err := fn(l, r)
		if err != nil {
			return nil, err
		}
		if eq {
			return nil, nil
		}
	} else if fn, ok := e.comparers[pairKey{r.Kind, l.Kind}]; ok {
		eq, err := fn(r, l)
		if err != nil {
			return nil, err
		}
		if eq {
			return nil, nil
		}
	}

	return NewDelta(key, l, r), nil
}

// diffLists сравнивает последовательности поэлементно по позиции;
// лишние элементы одной стороны дают различия "нет пары"
func (e *Engine) diffLists(key string, left, right []record.Value) (Change, error) {
	nested := make(Report)
	n := len(left)
	if len(right) > n {
		n = len(right)
	}

	for i := 0; i < n; i++ {
		elemKey := fmt.Sprintf("%d", i)
		switch {
		case i >= len(right):
			nested.add(elemKey, OnlyLeft(elemKey, left[i]))
		case i >= len(left):
			nested.add(elemKey, OnlyRight(elemKey, right[i]))
		default:
			change, err := e.diffValue(elemKey, left[i], right[i])
			if err != nil {
				return nil, err
			}
			if change != nil {
				nested.add(elemKey, change)
			}
		}
	}

	if nested.Empty() {
		return nil, nil
	}
	return Composite{Key: key, Changes: nested}, nil
}

// DiffCollections коррелирует две коллекции записей составным ключом
// из 0-4 полей (0 полей - позиционная корреляция) и сравнивает
// сопоставленные пары через Diff. Элементы без пары на другой стороне
// попадают в отчет как различия "нет пары".
func (e *Engine) DiffCollections(left, right record.ResultSet, keys ...string) (Report, error) {
	if len(keys) > 4 {
		return nil, fmt.Errorf("%w: got %d", ErrKeyArity, len(keys))
	}

	if len(keys) == 0 {
		return e.diffPositional(left, right)
	}

	leftKeys, leftByKey := indexByKey(left, keys)
	rightKeys, rightByKey := indexByKey(right, keys)

	report := make(Report)
	for _, k := range leftKeys {
		lrec := leftByKey[k]
		rrec, ok := rightByKey[k]
		if !ok {
			report.add(k, OnlyLeft(k, record.RecordValue(lrec)))
			continue
		}
		nested, err := e.Diff(lrec, rrec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		if !nested.Empty() {
			report.add(k, Composite{Key: k, Changes: nested})
		}
	}
	for _, k := range rightKeys {
		if _, ok := leftByKey[k]; !ok {
			report.add(k, OnlyRight(k, record.RecordValue(rightByKey[k])))
		}
	}
	return report, nil
}

// diffPositional сопоставляет записи по индексу
func (e *Engine) diffPositional(left, right record.ResultSet) (Report, error) {
	report := make(Report)
	n := len(left)
	if len(right) > n {
		n = len(right)
	}

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%d", i)
		switch {
		case i >= len(right):
			report.add(key, OnlyLeft(key, record.RecordValue(left[i])))
		case i >= len(left):
			report.add(key, OnlyRight(key, record.RecordValue(right[i])))
		default:
			nested, err := e.Diff(left[i], right[i])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if !nested.Empty() {
				report.add(key, Composite{Key: key, Changes: nested})
			}
		}
	}
	return report, nil
}

// indexByKey строит отображение составной-ключ -> запись с сохранением
// порядка первого появления ключей
func indexByKey(rs record.ResultSet, keys []string) ([]string, map[string]*record.Record) {
	order := make([]string, 0, len(rs))
	byKey := make(map[string]*record.Record, len(rs))
	for _, rec := range rs {
		k := buildKey(rec, keys)
		if _, exists := byKey[k]; !exists {
			order = append(order, k)
			byKey[k] = rec
		}
	}
	return order, byKey
}

// buildKey собирает значение составного ключа из текстовых представлений
func buildKey(rec *record.Record, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := rec.Get(k)
		parts[i] = v.Text()
	}
	return strings.Join(parts, "|")
}
