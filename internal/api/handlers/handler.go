// handler.go — основной обработчик JSON API консоли.
// Объединяет health endpoints и глобальный поиск.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/refadmin/internal/service"
)

// APIHandler — основной обработчик JSON API.
type APIHandler struct {
	health *HealthHandler
	search *service.SearchService
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(health *HealthHandler, search *service.SearchService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		health: health,
		search: search,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness-проверка (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness-проверка (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
