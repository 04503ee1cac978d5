package views

// htmxScript — подключение HTMX.
const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

// LayoutData — данные каркаса страницы.
type LayoutData struct {
	// Tabs — справочники в порядке вкладок
	Tabs []string
	// Active — активная вкладка
	Active string
}
