package views

// AlertKind — вид уведомления.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertInfo    AlertKind = "info"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// AlertData — уведомление для пользователя.
type AlertData struct {
	Kind    AlertKind
	Message string
}

// role — ARIA-роль: предупреждения и ошибки озвучиваются сразу.
func (a AlertData) role() string {
	if a.Kind == AlertError || a.Kind == AlertWarning {
		return "alert"
	}
	return "status"
}
