// Пакет handlers — HTTP-обработчики консоли справочников.
// render.go — общие функции отрисовки: полные страницы и HTMX-фрагменты,
// уведомления об ошибках.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/bigkaa/refadmin/internal/domain/export"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/mgmtclient"
	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/ui/i18n"
	"github.com/bigkaa/refadmin/internal/ui/views"
)

// isHTMX сообщает, пришёл ли запрос от HTMX (частичное обновление).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render отрисовывает компонент как HTML-ответ.
func render(w http.ResponseWriter, r *http.Request, c templ.Component, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// renderAlert отрисовывает уведомление в цель, выбранную клиентом.
func renderAlert(w http.ResponseWriter, r *http.Request, a views.AlertData, logger *slog.Logger) {
	render(w, r, views.Alert(a), logger)
}

// renderChanged сообщает клиенту об успешном изменении: экран списка
// перезагружается, модальное окно закрывается, уведомление уходит в #alerts.
func renderChanged(w http.ResponseWriter, r *http.Request, messageKey string, logger *slog.Logger) {
	w.Header().Set("HX-Trigger", views.EventChanged)
	w.Header().Set("HX-Retarget", views.TargetAlerts)
	w.Header().Set("HX-Reswap", "innerHTML")
	renderAlert(w, r, views.AlertData{Kind: views.AlertSuccess, Message: i18n.T(r.Context(), messageKey)}, logger)
}

// alertFor переводит ошибку в уведомление:
//   - локальная проверка — предупреждение с подписью поля;
//   - ошибка Management API — ошибка с сообщением API;
//   - пустая выгрузка и занятый справочник — информационное сообщение.
func alertFor(ctx context.Context, err error) views.AlertData {
	var verr *model.ValidationError
	var rerr *mgmtclient.RemoteError

	switch {
	case errors.As(err, &verr):
		return views.AlertData{Kind: views.AlertWarning, Message: validationMessage(ctx, verr)}
	case errors.Is(err, export.ErrEmptyExport):
		return views.AlertData{Kind: views.AlertInfo, Message: i18n.T(ctx, "alert.empty_export")}
	case errors.Is(err, service.ErrMutationPending):
		return views.AlertData{Kind: views.AlertInfo, Message: i18n.T(ctx, "alert.pending")}
	case errors.Is(err, service.ErrConfirmationRequired):
		return views.AlertData{Kind: views.AlertWarning, Message: i18n.T(ctx, "alert.confirm_required")}
	case errors.Is(err, service.ErrNotFound), errors.Is(err, mgmtclient.ErrNotFound):
		return views.AlertData{Kind: views.AlertWarning, Message: i18n.T(ctx, "alert.not_found")}
	case errors.As(err, &rerr):
		return views.AlertData{Kind: views.AlertError, Message: i18n.Tf(ctx, "alert.api_error", rerr.Error())}
	default:
		return views.AlertData{Kind: views.AlertError, Message: i18n.T(ctx, "alert.internal")}
	}
}

// validationMessage — "Подпись поля : сообщение" на языке запроса.
// Без перевода ключа используется исходное сообщение.
func validationMessage(ctx context.Context, verr *model.ValidationError) string {
	msg := verr.Message
	if verr.Key != "" {
		if translated := i18n.T(ctx, verr.Key); translated != verr.Key {
			msg = translated
		}
	}
	if verr.Field == "" {
		return msg
	}
	return i18n.T(ctx, "col."+verr.Field) + " : " + msg
}
