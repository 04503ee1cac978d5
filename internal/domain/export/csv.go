// Пакет export — выгрузка отфильтрованных справочных записей в CSV и XLSX.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyExport — нечего выгружать: набор записей пуст.
var ErrEmptyExport = errors.New("нет данных для экспорта")

// bom — метка порядка байтов UTF-8: табличные редакторы открывают файл в UTF-8.
const bom = "\uFEFF"

// Column — колонка выгрузки.
type Column[T any] struct {
	// Key — машинное имя колонки (fallback для заголовка)
	Key string
	// Label — заголовок колонки (может быть пустым)
	Label string
	// Value — извлечение значения из записи
	Value func(T) any
}

// Header возвращает заголовок колонки: Label или Key.
func (c Column[T]) Header() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// ToCSV сериализует записи в CSV: заголовок, строки через "\n", BOM в начале.
// Для пустого набора возвращает ErrEmptyExport.
func ToCSV[T any](records []T, columns []Column[T]) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyExport
	}

	lines := make([]string, 0, len(records)+1)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = quote(col.Header())
	}
	lines = append(lines, strings.Join(header, ","))

	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = quote(FormatValue(col.Value(rec)))
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return bom + strings.Join(lines, "\n"), nil
}

// FileName возвращает имя файла выгрузки: {name}_{YYYY-MM-DD}.csv.
func FileName(name string, date time.Time) string {
	return fmt.Sprintf("%s_%s.csv", name, date.Format(time.DateOnly))
}

// quote экранирует значение, если оно содержит запятую, кавычку или перевод строки.
func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatValue приводит значение колонки к строке:
// nil → "", составные значения → JSON, остальное — текстовое представление.
func FormatValue(v any) string {
	if v == nil {
		return ""
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return ""
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.String:
		return rv.String()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
