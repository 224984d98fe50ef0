package record

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind определяет тип значения колонки
type Kind int

// Поддерживаемые типы значений
const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindBlob
	KindList
	KindRecord
)

// String - строковое представление типа
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindString:
		return "STRING"
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindBool:
		return "BOOLEAN"
	case KindTime:
		return "DATETIME"
	case KindBlob:
		return "BLOB"
	case KindList:
		return "LIST"
	case KindRecord:
		return "RECORD"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Value представляет типизированное значение одной колонки.
// Заменяет interface{} на явное теговое объединение: заполнено только
// поле, соответствующее Kind.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Blob  []byte
	List  []Value
	Rec   *Record
}

// Null создает NULL значение
func Null() Value {
	return Value{Kind: KindNull}
}

// StringValue создает строковое значение
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IntValue создает целочисленное значение
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// FloatValue создает вещественное значение
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// BoolValue создает логическое значение
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// TimeValue создает значение даты/времени
func TimeValue(t time.Time) Value {
	return Value{Kind: KindTime, Time: t}
}

// BlobValue создает бинарное значение
func BlobValue(b []byte) Value {
	return Value{Kind: KindBlob, Blob: b}
}

// ListValue создает значение-последовательность
func ListValue(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

// RecordValue создает вложенное значение-запись
func RecordValue(r *Record) Value {
	if r == nil {
		return Null()
	}
	return Value{Kind: KindRecord, Rec: r}
}

// FromAny конвертирует обычное Go значение (результат драйвера БД или
// аргумент вызывающего кода) в Value
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case *Record:
		return RecordValue(x)
	case string:
		return StringValue(x)
	case []byte:
		// Копируем: драйверы переиспользуют буферы между строками
		b := make([]byte, len(x))
		copy(b, x)
		return BlobValue(b)
	case bool:
		return BoolValue(x)
	case int:
		return IntValue(int64(x))
	case int8:
		return IntValue(int64(x))
	case int16:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case uint:
		return IntValue(int64(x))
	case uint8:
		return IntValue(int64(x))
	case uint16:
		return IntValue(int64(x))
	case uint32:
		return IntValue(int64(x))
	case uint64:
		return IntValue(int64(x))
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case time.Time:
		return TimeValue(x)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = FromAny(item)
		}
		return ListValue(items...)
	case map[string]any:
		rec := New()
		for _, k := range sortedKeys(x) {
			rec.Set(k, FromAny(x[k]))
		}
		return RecordValue(rec)
	default:
		// Последняя попытка - строковое представление
		return StringValue(fmt.Sprintf("%v", x))
	}
}

// Driver возвращает значение в виде, пригодном для передачи драйверу БД
func (v Value) Driver() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time
	case KindBlob:
		return v.Blob
	default:
		return v.Text()
	}
}

// IsNull проверяет является ли значение NULL
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Text возвращает текстовое представление значения.
// NULL представляется пустой строкой, boolean как 1/0,
// дата/время в формате "2006-01-02 15:04:05".
func (v Value) Text() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "1"
		}
		return "0"
	case KindTime:
		return v.Time.Format("2006-01-02 15:04:05")
	case KindBlob:
		return string(v.Blob)
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.Text()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindRecord:
		return v.Rec.String()
	default:
		return ""
	}
}

// Equal проверяет строгое равенство: одинаковый Kind и одинаковое
// содержимое. Межтиповые эквивалентности (epoch vs дата и т.п.)
// разрешаются на уровне delta-движка, не здесь.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.Str == other.Str
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindBool:
		return v.Bool == other.Bool
	case KindTime:
		return v.Time.Equal(other.Time)
	case KindBlob:
		return bytes.Equal(v.Blob, other.Blob)
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		return v.Rec.Equal(other.Rec)
	default:
		return false
	}
}
