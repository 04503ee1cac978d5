// Пакет errors — конструкторы стандартных ошибок JSON API консоли.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/mgmtclient"
	"github.com/bigkaa/refadmin/internal/service"
)

// Коды ошибок JSON API.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeAPIUnavailable  = "API_UNAVAILABLE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Conflict — 409 конфликт (операция уже выполняется или отклонена API).
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// APIUnavailable — 502 Management API недоступен или вернул ошибку.
func APIUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeAPIUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

// FromError выбирает ответ по типу ошибки сервисного слоя.
func FromError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	var rerr *mgmtclient.RemoteError

	switch {
	case stderrors.As(err, &verr), stderrors.Is(err, service.ErrValidation):
		ValidationError(w, err.Error())
	case stderrors.Is(err, service.ErrNotFound), stderrors.Is(err, mgmtclient.ErrNotFound):
		NotFound(w, err.Error())
	case stderrors.Is(err, service.ErrMutationPending), stderrors.Is(err, mgmtclient.ErrConflict):
		Conflict(w, err.Error())
	case stderrors.As(err, &rerr):
		APIUnavailable(w, rerr.Error())
	default:
		InternalError(w, err.Error())
	}
}
