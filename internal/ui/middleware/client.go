// Пакет middleware — HTTP middleware консоли (UI).
// client.go — идентификатор клиента (браузера) в cookie.
// По нему разделяются UI-настройки разных пользователей консоли.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyClientID — идентификатор клиента в контексте запроса.
	ContextKeyClientID contextKey = "client_id"
)

// ClientCookieName — имя cookie с идентификатором клиента.
const ClientCookieName = "ra_client"

// clientCookieMaxAge — срок жизни cookie (1 год).
const clientCookieMaxAge = 365 * 24 * 60 * 60

// ClientID возвращает middleware, который читает идентификатор клиента из
// cookie или выдаёт новый UUID. Некорректное значение cookie заменяется.
func ClientID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(ClientCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ContextKeyClientID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext извлекает идентификатор клиента из контекста.
// Возвращает пустую строку, если запрос не прошёл через ClientID.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyClientID).(string)
	return id
}
