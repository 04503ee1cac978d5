package i18n

import "net/http"

// LangCookieName — cookie с явно выбранным языком.
const LangCookieName = "lang"

// Middleware определяет язык запроса и кладёт его в контекст.
// Порядок: cookie "lang", затем Accept-Language, затем defaultLang.
func Middleware(defaultLang string) func(http.Handler) http.Handler {
	if !Supported(defaultLang) {
		defaultLang = DefaultLang
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), requestLang(r, defaultLang))))
		})
	}
}

func requestLang(r *http.Request, defaultLang string) string {
	if c, err := r.Cookie(LangCookieName); err == nil && Supported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return defaultLang
}
