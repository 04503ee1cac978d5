// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — запись не найдена в загруженном списке.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrMutationPending — предыдущая операция изменения ещё выполняется.
	ErrMutationPending = errors.New("предыдущая операция ещё выполняется")
	// ErrConfirmationRequired — удаление без подтверждения.
	ErrConfirmationRequired = errors.New("удаление требует подтверждения")
	// ErrUnknownFormat — неподдерживаемый формат экспорта.
	ErrUnknownFormat = errors.New("неподдерживаемый формат экспорта")
)
