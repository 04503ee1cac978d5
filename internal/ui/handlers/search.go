// search.go — глобальный поиск по справочникам в шапке консоли.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// SearchHandler — обработчики глобального поиска.
type SearchHandler struct {
	search *service.SearchService
	logger *slog.Logger
}

// NewSearchHandler создаёт обработчики глобального поиска.
func NewSearchHandler(search *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		logger: logger.With(slog.String("component", "ui.search")),
	}
}

// HandleSearch обрабатывает GET /ui/search?q= — выпадающий список результатов.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	results, err := h.search.Search(ctx, query, 0)
	if err != nil {
		h.logger.Warn("Ошибка глобального поиска", slog.String("error", err.Error()))
		renderAlert(w, r, alertFor(ctx, err), h.logger)
		return
	}
	render(w, r, views.SearchResults(query, results), h.logger)
}

// HandleWarm обрабатывает GET /ui/search/warm — загрузка справочников
// при первом фокусе на поле поиска.
func (h *SearchHandler) HandleWarm(w http.ResponseWriter, r *http.Request) {
	if !h.search.Warmed() {
		if err := h.search.Warm(r.Context()); err != nil {
			h.logger.Warn("Ошибка предварительной загрузки поиска", slog.String("error", err.Error()))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
