package delta

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// Допуск числовых сравнений: значения из разных движков приходят с
// разной точностью представления
const epsilon = 1e-9

// registerDefaults наполняет движок стандартными компараторами
func registerDefaults(e *Engine) {
	e.Register(record.KindInt, record.KindFloat, numericEquivalence)
	e.Register(record.KindInt, record.KindString, numericEquivalence)
	e.Register(record.KindFloat, record.KindString, numericEquivalence)
	e.Register(record.KindTime, record.KindString, dateStringEquivalence)
	e.Register(record.KindTime, record.KindInt, dateEpochEquivalence)
	e.Register(record.KindBool, record.KindInt, boolEquivalence)
	e.Register(record.KindBool, record.KindString, boolEquivalence)
}

// numericEquivalence сравнивает значения как числа с допуском
func numericEquivalence(a, b record.Value) (bool, error) {
	fa, err := asNumber(a)
	if err != nil {
		return false, err
	}
	fb, err := asNumber(b)
	if err != nil {
		return false, err
	}
	return math.Abs(fa-fb) <= epsilon*math.Max(1, math.Max(math.Abs(fa), math.Abs(fb))), nil
}

func asNumber(v record.Value) (float64, error) {
	switch v.Kind {
	case record.KindInt:
		return float64(v.Int), nil
	case record.KindFloat:
		return v.Float, nil
	case record.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrConvert, v.Str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: cannot read %s as number", ErrConvert, v.Kind)
	}
}

// dateLayouts - форматы строковых дат, принимаемые при сравнении
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// dateStringEquivalence сравнивает дату со строкой: форматы dateLayouts
// либо epoch-строка из 10 (секунды) или 13 (миллисекунды) цифр
func dateStringEquivalence(a, b record.Value) (bool, error) {
	t, s := a, b
	if t.Kind != record.KindTime {
		t, s = b, a
	}

	parsed, err := parseDateString(s.Str)
	if err != nil {
		return false, err
	}
	return t.Time.Equal(parsed), nil
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if isDigits(s) {
		switch len(s) {
		case 10:
			sec, _ := strconv.ParseInt(s, 10, 64)
			return time.Unix(sec, 0).UTC(), nil
		case 13:
			ms, _ := strconv.ParseInt(s, 10, 64)
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a datetime", ErrConvert, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// dateEpochEquivalence сравнивает дату с целочисленной эпохой:
// значения свыше 1e11 трактуются как миллисекунды
func dateEpochEquivalence(a, b record.Value) (bool, error) {
	t, n := a, b
	if t.Kind != record.KindTime {
		t, n = b, a
	}

	var parsed time.Time
	if n.Int > 1e11 {
		parsed = time.UnixMilli(n.Int).UTC()
	} else {
		parsed = time.Unix(n.Int, 0).UTC()
	}
	return t.Time.Equal(parsed), nil
}

// boolEquivalence сравнивает булево с числом (0/1) или строкой
func boolEquivalence(a, b record.Value) (bool, error) {
	bv, o := a, b
	if bv.Kind != record.KindBool {
		bv, o = b, a
	}

	switch o.Kind {
	case record.KindInt:
		return bv.Bool == (o.Int != 0), nil
	case record.KindString:
		switch strings.ToLower(strings.TrimSpace(o.Str)) {
		case "1", "true", "yes":
			return bv.Bool, nil
		case "0", "false", "no":
			return !bv.Bool, nil
		default:
			return false, fmt.Errorf("%w: %q is not a boolean", ErrConvert, o.Str)
		}
	default:
		return false, fmt.Errorf("%w: cannot read %s as boolean", ErrConvert, o.Kind)
	}
}
