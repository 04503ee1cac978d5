// shell.go — каркас консоли: вкладки справочников, активная вкладка и
// сохранённые параметры списков (поиск, размер страницы).
package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/a-h/templ"

	"github.com/bigkaa/refadmin/internal/service"
	uimiddleware "github.com/bigkaa/refadmin/internal/ui/middleware"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// Shell — общий каркас экранов справочников.
type Shell struct {
	tabs   []string
	prefs  *service.PreferencesService
	logger *slog.Logger
}

// NewShell создаёт каркас с вкладками tabs (в порядке отображения).
func NewShell(tabs []string, prefs *service.PreferencesService, logger *slog.Logger) *Shell {
	return &Shell{
		tabs:   slices.Clone(tabs),
		prefs:  prefs,
		logger: logger.With(slog.String("component", "ui.shell")),
	}
}

// HandleIndex обрабатывает GET /ui/ — переход на сохранённую активную вкладку.
func (s *Shell) HandleIndex(w http.ResponseWriter, r *http.Request) {
	client := uimiddleware.ClientIDFromContext(r.Context())
	http.Redirect(w, r, "/ui/"+s.prefs.ActiveTab(r.Context(), client), http.StatusSeeOther)
}

// renderScreen отрисовывает экран справочника: HTMX-запрос получает только
// содержимое #screen, обычный — полную страницу. Вкладка запоминается
// как активная.
func (s *Shell) renderScreen(w http.ResponseWriter, r *http.Request, entity string, body templ.Component) {
	ctx := r.Context()
	client := uimiddleware.ClientIDFromContext(ctx)

	if err := s.prefs.Set(ctx, client, service.KeyActiveTab, entity); err != nil {
		s.logger.Warn("Не удалось сохранить активную вкладку",
			slog.String("entity", entity),
			slog.String("error", err.Error()),
		)
	}

	if isHTMX(r) {
		render(w, r, body, s.logger)
		return
	}
	render(w, r, views.Layout(views.LayoutData{Tabs: s.tabs, Active: entity}, body), s.logger)
}

// listQuery собирает параметры списка. Переданные q и per_page сохраняются
// в настройках клиента, отсутствующие берутся из сохранённых.
func (s *Shell) listQuery(r *http.Request, entity string) service.Query {
	ctx := r.Context()
	client := uimiddleware.ClientIDFromContext(ctx)
	values := r.URL.Query()

	search := s.prefs.Search(ctx, client, entity)
	if values.Has("q") && values.Get("q") != search {
		search = values.Get("q")
		if err := s.prefs.Set(ctx, client, service.SearchKey(entity), search); err != nil {
			s.logger.Warn("Не удалось сохранить строку поиска",
				slog.String("entity", entity),
				slog.String("error", err.Error()),
			)
		}
	}

	perPage := s.prefs.PerPage(ctx, client, entity)
	if n := queryInt(values, "per_page"); n != nil && *n != perPage && slices.Contains(service.PerPageOptions, *n) {
		perPage = *n
		if err := s.prefs.Set(ctx, client, service.PerPageKey(entity), values.Get("per_page")); err != nil {
			s.logger.Warn("Не удалось сохранить размер страницы",
				slog.String("entity", entity),
				slog.String("error", err.Error()),
			)
		}
	}

	page := 1
	if p := queryInt(values, "page"); p != nil {
		page = *p
	}

	return service.Query{Search: search, Page: page, PerPage: perPage}
}

// exportSearch — строка поиска для выгрузки: из запроса или сохранённая.
func (s *Shell) exportSearch(r *http.Request, entity string) string {
	if values := r.URL.Query(); values.Has("q") {
		return values.Get("q")
	}
	return s.prefs.Search(r.Context(), uimiddleware.ClientIDFromContext(r.Context()), entity)
}
