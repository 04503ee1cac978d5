package mgmtclient

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Ошибки, которые можно проверить через errors.Is на *RemoteError.
var (
	// ErrNotFound — API вернул 404.
	ErrNotFound = errors.New("запись не найдена в Management API")
	// ErrConflict — API вернул 409.
	ErrConflict = errors.New("конфликт в Management API")
)

// errorBody — тело ошибочного ответа API.
type errorBody struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// RemoteError — API вернул ошибку или недоступен.
// Сообщение для пользователя объединяет message и details.
type RemoteError struct {
	// Status — HTTP-статус (0 при транспортной ошибке)
	Status int
	// Message — поле message ответа
	Message string
	// Details — поле details ответа
	Details string
	// Err — исходная транспортная ошибка
	Err error
}

// Error возвращает объединённое сообщение: "message: details".
func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.Details != "":
		return e.Message + ": " + e.Details
	case e.Message != "":
		return e.Message
	case e.Details != "":
		return e.Details
	default:
		return http.StatusText(e.Status)
	}
}

// Unwrap возвращает транспортную ошибку.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is сопоставляет HTTP-статус с ErrNotFound и ErrConflict.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}
