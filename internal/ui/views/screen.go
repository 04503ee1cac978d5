package views

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/refadmin/internal/domain/paging"
	"github.com/bigkaa/refadmin/internal/ui/i18n"
)

// Cell — ячейка таблицы.
type Cell struct {
	Text string
	// Swatch — цвет (#rrggbb), показываемый рядом с текстом
	Swatch string
}

// Row — строка таблицы.
type Row struct {
	ID    int64
	Cells []Cell
}

// RowActions — доступные действия над строкой.
type RowActions struct {
	Edit   bool
	Delete bool
	Token  bool
}

// ScreenData — экран списка справочника.
type ScreenData struct {
	Entity string
	// Headers — заголовки колонок (уже переведённые)
	Headers []string
	Rows    []Row
	Actions RowActions

	Search     string
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	Start      int
	End        int
	Window     []paging.Token
	Nav        paging.Navigator

	PerPageOptions []int
	// Pending — выполняется операция изменения
	Pending bool
}

// listURL — адрес списка с параметрами поиска и пагинации.
func (d ScreenData) listURL(page int) string {
	q := url.Values{}
	q.Set("q", d.Search)
	q.Set("per_page", strconv.Itoa(d.PerPage))
	q.Set("page", strconv.Itoa(page))
	return "/ui/" + d.Entity + "?" + q.Encode()
}

// exportURL — адрес выгрузки текущего отфильтрованного списка.
func (d ScreenData) exportURL(ext string) string {
	return "/ui/" + d.Entity + "/export." + ext + "?" + url.Values{"q": {d.Search}}.Encode()
}

// Screen отрисовывает экран списка: панель инструментов, таблицу и пагинацию.
// Экран перезагружается по событию EventChanged.
func Screen(d ScreenData) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.open("section",
			"class", "screen",
			"data-entity", d.Entity,
			"hx-get", d.listURL(d.Page),
			"hx-trigger", EventChanged+" from:body",
			"hx-target", TargetScreen,
		)

		toolbar(ctx, h, d)

		if len(d.Rows) == 0 {
			h.elem("p", i18n.T(ctx, "table.empty"), "class", "empty")
		} else {
			table(ctx, h, d)
			h.elem("p", i18n.Tf(ctx, "table.range", d.Start, d.End, d.TotalItems), "class", "range")
		}

		h.component(ctx, Pagination(d))
		h.close("section")
	})
}

// toolbar — поиск, размер страницы, создание и выгрузка.
func toolbar(ctx context.Context, h *html, d ScreenData) {
	base := "/ui/" + d.Entity

	h.open("div", "class", "toolbar")
	h.open("input",
		"id", "entity-search",
		"type", "search",
		"name", "q",
		"value", d.Search,
		"autocomplete", "off",
		"placeholder", i18n.T(ctx, "table.search"),
		"hx-get", base,
		"hx-trigger", "input changed delay:300ms, search",
		"hx-target", TargetScreen,
		"hx-include", "closest .toolbar",
	)

	h.open("label")
	h.text(i18n.T(ctx, "table.per_page") + " ")
	h.open("select", "name", "per_page", "hx-get", base, "hx-target", TargetScreen, "hx-include", "closest .toolbar")
	for _, n := range d.PerPageOptions {
		h.begin("option", "value", itoa(n))
		h.flag("selected", n == d.PerPage)
		h.end()
		h.text(itoa(n))
		h.close("option")
	}
	h.close("select")
	h.close("label")

	h.begin("button", "id", "btn-new", "type", "button", "hx-get", base+"/form", "hx-target", TargetModal)
	h.flag("disabled", d.Pending)
	h.end()
	h.text(i18n.T(ctx, "table.new"))
	h.close("button")

	h.elem("a", i18n.T(ctx, "table.export_csv"), "class", "export", "href", d.exportURL("csv"), "data-export", "true")
	h.elem("a", i18n.T(ctx, "table.export_xlsx"), "class", "export", "href", d.exportURL("xlsx"), "data-export", "true")
	h.close("div")
}

// table — таблица записей с действиями.
func table(ctx context.Context, h *html, d ScreenData) {
	base := "/ui/" + d.Entity

	h.raw(`<table class="records"><thead><tr>`)
	for _, header := range d.Headers {
		h.elem("th", header)
	}
	h.elem("th", i18n.T(ctx, "table.actions"), "class", "actions")
	h.raw("</tr></thead><tbody>")

	for _, row := range d.Rows {
		id := i64toa(row.ID)
		h.open("tr", "data-id", id)
		for _, cell := range row.Cells {
			h.open("td")
			if cell.Swatch != "" {
				h.open("span", "class", "swatch", "style", "background-color:"+cell.Swatch)
				h.close("span")
			}
			h.text(cell.Text)
			h.close("td")
		}

		h.open("td", "class", "actions")
		if d.Actions.Edit {
			h.elem("button", i18n.T(ctx, "action.edit"),
				"type", "button",
				"hx-get", base+"/form?id="+id,
				"hx-target", TargetModal,
			)
		}
		if d.Actions.Token {
			h.elem("button", i18n.T(ctx, "action.token"),
				"type", "button",
				"hx-post", base+"/"+id+"/token",
				"hx-target", TargetModal,
			)
		}
		if d.Actions.Delete {
			h.begin("button",
				"type", "button",
				"class", "danger",
				"hx-delete", base+"/"+id+"?confirm=true",
				"hx-confirm", i18n.T(ctx, "action.confirm_delete"),
				"hx-target", TargetAlerts,
			)
			h.flag("disabled", d.Pending)
			h.end()
			h.text(i18n.T(ctx, "action.delete"))
			h.close("button")
		}
		h.close("td")
		h.close("tr")
	}
	h.raw("</tbody></table>")
}

// Pagination отрисовывает навигацию: первая, предыдущая, окно страниц,
// следующая, последняя. Кнопки prev/next помечены для клавиш ←/→.
func Pagination(d ScreenData) templ.Component {
	return component(func(ctx context.Context, h *html) {
		if d.TotalPages <= 1 {
			return
		}

		h.open("nav", "class", "pagination", "aria-label", i18n.T(ctx, "pagination.label"))
		pageLink(ctx, h, d, "pagination.first", d.Nav.First(), !d.Nav.HasPrev(), "")
		pageLink(ctx, h, d, "pagination.prev", d.Nav.Prev(), !d.Nav.HasPrev(), "data-page-prev")

		for _, tok := range d.Window {
			if tok.IsEllipsis() {
				h.elem("span", "…", "class", "ellipsis")
				continue
			}
			if tok.Page == d.Page {
				h.elem("span", itoa(tok.Page), "class", "page current", "aria-current", "page")
				continue
			}
			h.elem("a", itoa(tok.Page),
				"class", "page",
				"href", d.listURL(tok.Page),
				"hx-get", d.listURL(tok.Page),
				"hx-target", TargetScreen,
			)
		}

		pageLink(ctx, h, d, "pagination.next", d.Nav.Next(), !d.Nav.HasNext(), "data-page-next")
		pageLink(ctx, h, d, "pagination.last", d.Nav.Last(), !d.Nav.HasNext(), "")
		h.close("nav")
	})
}

// pageLink — кнопка перехода на страницу page. marker — атрибут для app.js.
func pageLink(ctx context.Context, h *html, d ScreenData, key string, page int, disabled bool, marker string) {
	h.begin("button",
		"type", "button",
		"hx-get", d.listURL(page),
		"hx-target", TargetScreen,
	)
	h.flag("disabled", disabled)
	h.flag(marker, marker != "")
	h.end()
	h.text(i18n.T(ctx, key))
	h.close("button")
}
