// Package xlsx экспортирует наборы записей в файлы Excel.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

// ToXLSX сохраняет набор записей в файл Excel.
//
// Колонки берутся из первой записи; значения пишутся нативными типами
// ячеек (числа числами, даты датами), NULL - пустая ячейка.
//
// Пример:
//
//	err := xlsx.ToXLSX(rows, "output.xlsx", "Orders")
func ToXLSX(rs record.ResultSet, filePath string, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	if len(rs) == 0 {
		return f.SaveAs(filePath)
	}
	columns := rs[0].Columns()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, rec := range rs {
		for col, name := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			v, ok := rec.Get(name)
			if !ok || v.IsNull() {
				continue
			}
			f.SetCellValue(sheetName, cell, cellValue(v))
		}
	}

	for col := range columns {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			continue
		}
		f.SetColWidth(sheetName, name, name, 15)
	}

	return f.SaveAs(filePath)
}

// cellValue приводит типизированное значение к нативному типу ячейки
func cellValue(v record.Value) any {
	switch v.Kind {
	case record.KindInt:
		return v.Int
	case record.KindFloat:
		return v.Float
	case record.KindBool:
		return v.Bool
	case record.KindTime:
		return v.Time
	case record.KindString:
		return v.Str
	default:
		// BLOB, списки и вложенные записи - текстом
		return v.Text()
	}
}
