// search.go — GET /api/v1/search: глобальный поиск по справочникам.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/refadmin/internal/api/errors"
	"github.com/bigkaa/refadmin/internal/domain/search"
)

// searchResponse — ответ глобального поиска.
type searchResponse struct {
	Query string          `json:"query"`
	Items []search.Result `json:"items"`
	Total int             `json:"total"`
}

// SearchRecords — GET /api/v1/search?q=&limit=.
// q обязателен, limit ограничивается search.MaxResults.
func (h *APIHandler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	var (
		query string
		limit *int
	)

	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &query); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр q: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр limit: "+err.Error())
		return
	}

	n := search.MaxResults
	if limit != nil {
		if *limit < 1 {
			apierrors.ValidationError(w, "limit должен быть положительным")
			return
		}
		n = min(*limit, search.MaxResults)
	}

	results, err := h.search.Search(r.Context(), query, n)
	if err != nil {
		h.logger.Warn("Ошибка глобального поиска",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		apierrors.FromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query: query,
		Items: results,
		Total: len(results),
	})
}
