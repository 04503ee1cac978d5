// Пакет views — HTML-компоненты консоли (templ.Component).
// Разметка рассчитана на HTMX: списки и формы обновляются частично,
// цели обмена — #screen, #modal и #alerts.
//
// Страницы с фиксированной разметкой описаны в *.templ. Таблица и форма
// справочника строятся по описанию колонок и полей во время выполнения
// и пишутся через html.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Идентификаторы контейнеров страницы.
const (
	TargetScreen = "#screen"
	TargetModal  = "#modal"
	TargetAlerts = "#alerts"
)

// EventChanged — HTMX-событие после успешного изменения справочника.
// Экран списка перезагружается, модальное окно закрывается.
const EventChanged = "refadmin:changed"

// html — писатель разметки: первая ошибка записи запоминается,
// последующие вызовы ничего не делают.
type html struct {
	w   io.Writer
	err error
}

// raw пишет разметку без экранирования.
func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text пишет экранированный текст.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr пишет атрибут name="value" с экранированием значения.
func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// flag пишет булев атрибут, если on.
func (h *html) flag(name string, on bool) {
	if on {
		h.raw(" " + name)
	}
}

// open пишет открывающий тег с атрибутами (пары name, value).
func (h *html) open(tag string, attrs ...string) {
	h.begin(tag, attrs...)
	h.end()
}

// begin начинает открывающий тег; после него можно добавить flag и attr,
// затем закрыть тег через end.
func (h *html) begin(tag string, attrs ...string) {
	h.raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		h.attr(attrs[i], attrs[i+1])
	}
}

// end завершает открывающий тег.
func (h *html) end() {
	h.raw(">")
}

// close пишет закрывающий тег.
func (h *html) close(tag string) {
	h.raw("</" + tag + ">")
}

// elem пишет элемент с текстовым содержимым.
func (h *html) elem(tag, content string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(content)
	h.close(tag)
}

// component вставляет вложенный компонент.
func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// component создаёт templ.Component из функции, пишущей разметку.
func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

func itoa(n int) string { return strconv.Itoa(n) }

func i64toa(n int64) string { return strconv.FormatInt(n, 10) }
