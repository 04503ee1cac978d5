// Пакет filter — клиентская фильтрация справочных записей по строке поиска.
// Запись подходит, если хотя бы одно из настроенных полей (в нижнем регистре)
// содержит запрос, либо десятичное представление её id содержит запрос.
package filter

import (
	"strconv"
	"strings"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// Field — функция доступа к полю записи. nil означает отсутствующее значение.
type Field[T any] func(T) *string

// Filter возвращает записи, соответствующие запросу, сохраняя исходный порядок.
// Пустой (после TrimSpace) запрос возвращает records без изменений.
func Filter[T model.Record](records []T, query string, fields []Field[T]) []T {
	if IsBlank(query) {
		return records
	}
	q := Normalize(query)

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if Matches(rec, q, fields) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches проверяет запись по уже нормализованному запросу.
func Matches[T model.Record](rec T, normalizedQuery string, fields []Field[T]) bool {
	if strings.Contains(strconv.FormatInt(rec.RecordID(), 10), normalizedQuery) {
		return true
	}
	return MatchesFields(rec, normalizedQuery, fields)
}

// MatchesFields проверяет только поля записи, без id.
func MatchesFields[T any](rec T, normalizedQuery string, fields []Field[T]) bool {
	for _, field := range fields {
		if containsLower(field(rec), normalizedQuery) {
			return true
		}
	}
	return false
}

// Normalize приводит запрос к нижнему регистру. Пробелы внутри и по краям
// сохраняются: пустота запроса проверяется отдельно через IsBlank.
func Normalize(query string) string {
	return strings.ToLower(query)
}

// IsBlank сообщает, пуст ли запрос после удаления краевых пробелов.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// containsLower — регистронезависимая проверка подстроки; nil не совпадает.
func containsLower(value *string, substr string) bool {
	if value == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*value), substr)
}
