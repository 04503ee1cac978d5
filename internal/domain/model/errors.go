package model

// ValidationError — ошибка, обнаруженная локально до обращения к API.
// Форма остаётся открытой, введённые данные сохраняются.
type ValidationError struct {
	// Field — имя поля формы (может быть пустым для ошибок уровня записи)
	Field string
	// Key — ключ перевода сообщения для UI (может быть пустым)
	Key string
	// Message — сообщение для логов и fallback для UI
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError создаёт ValidationError без ключа перевода.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewLocalizedValidationError создаёт ValidationError с ключом перевода.
func NewLocalizedValidationError(field, key, message string) *ValidationError {
	return &ValidationError{Field: field, Key: key, Message: message}
}
