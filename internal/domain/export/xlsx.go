package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// defaultColWidth — ширина колонок листа выгрузки.
const defaultColWidth = 22

// ToXLSX формирует книгу Excel с одним листом: заголовок (жирный) и строки
// записей. Значения приводятся так же, как в CSV, но без экранирования.
// Для пустого набора возвращает ErrEmptyExport.
func ToXLSX[T any](records []T, columns []Column[T], sheet string) (*bytes.Buffer, error) {
	if len(records) == 0 {
		return nil, ErrEmptyExport
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // книга в памяти

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("переименование листа: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("создание стиля заголовка: %w", err)
	}

	for col, c := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("координаты заголовка: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, c.Header()); err != nil {
			return nil, fmt.Errorf("запись заголовка %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("стиль заголовка %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("имя колонки: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, defaultColWidth); err != nil {
			return nil, fmt.Errorf("ширина колонки %s: %w", name, err)
		}
	}

	for rowIdx, rec := range records {
		for col, c := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("координаты ячейки: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, FormatValue(c.Value(rec))); err != nil {
				return nil, fmt.Errorf("запись ячейки %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("сериализация книги: %w", err)
	}
	return buf, nil
}

// XLSXFileName возвращает имя файла выгрузки: {name}_{YYYY-MM-DD}.xlsx.
func XLSXFileName(name string, date time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", name, date.Format(time.DateOnly))
}
