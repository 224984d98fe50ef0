package snapshot

import (
	"fmt"
	"time"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// rowModel - JSON представление одной записи с сохранением порядка
// колонок
type rowModel struct {
	Columns []string     `json:"c"`
	Values  []valueModel `json:"v"`
}

// valueModel - JSON представление типизированного значения
type valueModel struct {
	Kind  int          `json:"k"`
	Str   string       `json:"s,omitempty"`
	Int   int64        `json:"i,omitempty"`
	Float float64      `json:"f,omitempty"`
	Bool  bool         `json:"b,omitempty"`
	Time  string       `json:"t,omitempty"`
	Blob  []byte       `json:"d,omitempty"`
	List  []valueModel `json:"l,omitempty"`
	Rec   *rowModel    `json:"r,omitempty"`
}

func encodeRows(rs record.ResultSet) []rowModel {
	rows := make([]rowModel, len(rs))
	for i, rec := range rs {
		rows[i] = encodeRecord(rec)
	}
	return rows
}

func encodeRecord(rec *record.Record) rowModel {
	cols := rec.Columns()
	row := rowModel{Columns: cols, Values: make([]valueModel, len(cols))}
	for i, col := range cols {
		v, _ := rec.Get(col)
		row.Values[i] = encodeValue(v)
	}
	return row
}

func encodeValue(v record.Value) valueModel {
	m := valueModel{Kind: int(v.Kind)}
	switch v.Kind {
	case record.KindString:
		m.Str = v.Str
	case record.KindInt:
		m.Int = v.Int
	case record.KindFloat:
		m.Float = v.Float
	case record.KindBool:
		m.Bool = v.Bool
	case record.KindTime:
		m.Time = v.Time.Format(time.RFC3339Nano)
	case record.KindBlob:
		m.Blob = v.Blob
	case record.KindList:
		m.List = make([]valueModel, len(v.List))
		for i, item := range v.List {
			m.List[i] = encodeValue(item)
		}
	case record.KindRecord:
		row := encodeRecord(v.Rec)
		m.Rec = &row
	}
	return m
}

func decodeRows(rows []rowModel) (record.ResultSet, error) {
	rs := make(record.ResultSet, len(rows))
	for i, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rs[i] = rec
	}
	return rs, nil
}

func decodeRecord(row rowModel) (*record.Record, error) {
	if len(row.Columns) != len(row.Values) {
		return nil, fmt.Errorf("%w: %d columns, %d values", ErrFormat, len(row.Columns), len(row.Values))
	}
	rec := record.New()
	for i, col := range row.Columns {
		v, err := decodeValue(row.Values[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		rec.Set(col, v)
	}
	return rec, nil
}

func decodeValue(m valueModel) (record.Value, error) {
	switch record.Kind(m.Kind) {
	case record.KindNull:
		return record.Null(), nil
	case record.KindString:
		return record.StringValue(m.Str), nil
	case record.KindInt:
		return record.IntValue(m.Int), nil
	case record.KindFloat:
		return record.FloatValue(m.Float), nil
	case record.KindBool:
		return record.BoolValue(m.Bool), nil
	case record.KindTime:
		t, err := time.Parse(time.RFC3339Nano, m.Time)
		if err != nil {
			return record.Null(), fmt.Errorf("%w: bad datetime %q", ErrFormat, m.Time)
		}
		return record.TimeValue(t), nil
	case record.KindBlob:
		return record.BlobValue(m.Blob), nil
	case record.KindList:
		items := make([]record.Value, len(m.List))
		for i, item := range m.List {
			v, err := decodeValue(item)
			if err != nil {
				return record.Null(), err
			}
			items[i] = v
		}
		return record.ListValue(items...), nil
	case record.KindRecord:
		if m.Rec == nil {
			return record.Null(), nil
		}
		rec, err := decodeRecord(*m.Rec)
		if err != nil {
			return record.Null(), err
		}
		return record.RecordValue(rec), nil
	default:
		return record.Null(), fmt.Errorf("%w: unknown value kind %d", ErrFormat, m.Kind)
	}
}
