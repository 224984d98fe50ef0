package record

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// As проецирует ResultSet на объявленный тип T сопоставлением колонок
// с полями по имени (без учета регистра; тег `db` имеет приоритет).
// Единственная связь между сырыми колонками и целевой формой - имена полей:
// лишние колонки игнорируются, отсутствующие оставляют нулевые значения.
// Для T = *Record выполняется прямой возврат без проекции.
func As[T any](rs ResultSet) ([]T, error) {
	var zero T

	// Целевая форма совпадает с исходной - проекция не нужна
	if _, ok := any(zero).(*Record); ok {
		out := make([]T, len(rs))
		for i, rec := range rs {
			out[i] = any(rec).(T)
		}
		return out, nil
	}

	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record: target type must be struct or *Record, got %T", zero)
	}

	index := fieldIndex(rt)

	out := make([]T, 0, len(rs))
	for ri, rec := range rs {
		rv := reflect.New(rt).Elem()
		for _, col := range rec.Columns() {
			fi, ok := index[strings.ToLower(col)]
			if !ok {
				continue
			}
			v, _ := rec.Get(col)
			if err := assignValue(rv.Field(fi), v); err != nil {
				return nil, fmt.Errorf("record: row %d, column %q: %w", ri, col, err)
			}
		}
		out = append(out, rv.Interface().(T))
	}
	return out, nil
}

// One проецирует первую строку набора; пустой набор - ошибка
func One[T any](rs ResultSet) (T, error) {
	var zero T
	if len(rs) == 0 {
		return zero, fmt.Errorf("record: empty result set")
	}
	items, err := As[T](rs[:1])
	if err != nil {
		return zero, err
	}
	return items[0], nil
}

// fieldIndex строит отображение lower(имя) -> индекс экспортируемого поля.
// Тег `db:"name"` переопределяет имя, `db:"-"` исключает поле.
func fieldIndex(rt reflect.Type) map[string]int {
	index := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue // неэкспортируемое
		}
		name := f.Name
		if tag := f.Tag.Get("db"); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}
		key := strings.ToLower(name)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

var timeType = reflect.TypeOf(time.Time{})

// assignValue записывает Value в поле структуры с конвертацией типов.
// NULL оставляет нулевое значение поля (nil для указателей).
func assignValue(field reflect.Value, v Value) error {
	if v.IsNull() {
		return nil
	}

	ft := field.Type()

	// Указатель: выделяем и присваиваем по значению
	if ft.Kind() == reflect.Pointer {
		p := reflect.New(ft.Elem())
		if err := assignValue(p.Elem(), v); err != nil {
			return err
		}
		field.Set(p)
		return nil
	}

	// time.Time
	if ft == timeType {
		t, err := v.asTime()
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch ft.Kind() {
	case reflect.String:
		field.SetString(v.Text())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := v.asInt()
		if err != nil {
			return err
		}
		field.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := v.asInt()
		if err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("cannot assign negative value %d to %s", i, ft)
		}
		field.SetUint(uint64(i))
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := v.asFloat()
		if err != nil {
			return err
		}
		field.SetFloat(f)
		return nil

	case reflect.Bool:
		b, err := v.asBool()
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil

	case reflect.Slice:
		if ft.Elem().Kind() == reflect.Uint8 {
			switch v.Kind {
			case KindBlob:
				field.SetBytes(v.Blob)
			default:
				field.SetBytes([]byte(v.Text()))
			}
			return nil
		}

	case reflect.Interface:
		if ft.NumMethod() == 0 {
			field.Set(reflect.ValueOf(v.Driver()))
			return nil
		}
	}

	return fmt.Errorf("cannot assign %s value to field type %s", v.Kind, ft)
}

func (v Value) asInt() (int64, error) {
	switch v.Kind {
	case KindInt:
		return v.Int, nil
	case KindFloat:
		return int64(v.Float), nil
	case KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", v.Str)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to integer", v.Kind)
	}
}

func (v Value) asFloat() (float64, error) {
	switch v.Kind {
	case KindFloat:
		return v.Float, nil
	case KindInt:
		return float64(v.Int), nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", v.Str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to number", v.Kind)
	}
}

func (v Value) asBool() (bool, error) {
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindInt:
		return v.Int != 0, nil
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "1", "true", "yes":
			return true, nil
		case "0", "false", "no", "":
			return false, nil
		}
		return false, fmt.Errorf("cannot parse %q as boolean", v.Str)
	default:
		return false, fmt.Errorf("cannot convert %s to boolean", v.Kind)
	}
}

// timeLayouts - форматы, принимаемые при конвертации строк в дату/время
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (v Value) asTime() (time.Time, error) {
	switch v.Kind {
	case KindTime:
		return v.Time, nil
	case KindString:
		s := strings.TrimSpace(v.Str)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as datetime", v.Str)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %s to datetime", v.Kind)
	}
}
