package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// IDList — список идентификаторов, который API хранит JSON-строкой
// ("[1,2,3]"). Декодирование никогда не возвращает ошибку: любой
// нераспознанный формат превращается в пустой список.
type IDList []int64

// UnmarshalJSON принимает массив чисел, строку с JSON-массивом или null.
func (l *IDList) UnmarshalJSON(data []byte) error {
	*l = ParseIDList(data)
	return nil
}

// MarshalJSON кодирует список обратно в строковую форму.
func (l IDList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// String возвращает JSON-представление массива: "[1,2,3]".
func (l IDList) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// Contains сообщает, есть ли id в списке.
func (l IDList) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// ParseIDList разбирает сырое значение поля.
func ParseIDList(data []byte) IDList {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return IDList{}
	}

	// Строка с вложенным JSON
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return IDList{}
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return IDList{}
		}
		return ParseIDList([]byte(inner))
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return IDList{}
	}
	return IDList(ids)
}
