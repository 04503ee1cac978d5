// Пакет i18n — переводы интерфейса консоли (fr — основной каталог, en).
// Язык запроса кладёт в контекст Middleware, строки достаются через
// T(ctx, key) и Tf(ctx, key, args...). Отсутствующий перевод берётся из
// основного каталога, а если нет и его — возвращается сам ключ.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLang — основной язык и каталог-источник для недостающих ключей.
const DefaultLang = "fr"

// Language — поддерживаемый язык интерфейса.
type Language struct {
	Code string
	Tag  language.Tag
}

// Languages — языки в порядке отображения переключателя.
// Первый элемент совпадает с DefaultLang и выигрывает при равном
// качестве совпадения Accept-Language.
var Languages = []Language{
	{Code: "fr", Tag: language.French},
	{Code: "en", Tag: language.English},
}

var matcher = language.NewMatcher(tags())

func tags() []language.Tag {
	out := make([]language.Tag, len(Languages))
	for i, l := range Languages {
		out[i] = l.Tag
	}
	return out
}

// Codes возвращает коды поддерживаемых языков.
func Codes() []string {
	out := make([]string, len(Languages))
	for i, l := range Languages {
		out[i] = l.Code
	}
	return out
}

// Supported сообщает, есть ли каталог для языка code.
func Supported(code string) bool {
	return slices.ContainsFunc(Languages, func(l Language) bool { return l.Code == code })
}

// MatchLanguage выбирает язык по заголовку Accept-Language.
// Нераспознанный заголовок даёт DefaultLang.
func MatchLanguage(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	if idx < 0 || idx >= len(Languages) {
		return DefaultLang
	}
	return Languages[idx].Code
}

// Bundle — каталоги переводов: язык → ключ → строка.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	// missing — ключи, об отсутствии которых уже сообщено в лог
	missing sync.Map
	logger  *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bundle{
		catalogs: make(map[string]map[string]string, len(Languages)),
		logger:   logger.With(slog.String("component", "i18n")),
	}
}

// LoadMessages загружает плоский JSON-каталог {"key": "строка"} языка lang.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	if !Supported(lang) {
		return fmt.Errorf("i18n: неподдерживаемый язык %q", lang)
	}
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	b.logger.Debug("Каталог переводов загружен",
		slog.String("lang", lang),
		slog.Int("keys", len(messages)),
	)
	return nil
}

// MissingKeys возвращает ключи основного каталога, которых нет в каталоге lang.
func (b *Bundle) MissingKeys(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []string
	target := b.catalogs[lang]
	for key := range b.catalogs[DefaultLang] {
		if _, ok := target[key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

// Translate возвращает строку ключа key на языке lang.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	msg, ok := b.catalogs[lang][key]
	if !ok && lang != DefaultLang {
		msg, ok = b.catalogs[DefaultLang][key]
	}
	b.mu.RUnlock()

	if ok {
		return msg
	}
	if _, seen := b.missing.LoadOrStore(key, struct{}{}); !seen {
		b.logger.Warn("Ключ перевода не найден", slog.String("key", key))
	}
	return key
}

// Translatef подставляет args в строку ключа key.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	msg := b.Translate(lang, key)
	if len(args) == 0 {
		return msg
	}
	return sprintf(msg, args...)
}

// Формат-строки приходят из JSON-каталогов, статическая printf-проверка
// к ним неприменима.
var sprintf = fmt.Sprintf

// --- Глобальный каталог ---

var (
	global     *Bundle
	globalOnce sync.Once
)

// Init создаёт глобальный Bundle (однократно) и возвращает его.
func Init(logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		global = NewBundle(logger)
	})
	return global
}

type langKey struct{}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext извлекает язык из контекста (по умолчанию DefaultLang).
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// T переводит key на язык запроса. Без Init возвращает сам ключ.
func T(ctx context.Context, key string) string {
	if global == nil {
		return key
	}
	return global.Translate(LangFromContext(ctx), key)
}

// Tf — T с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	if global == nil {
		if len(args) == 0 {
			return key
		}
		return sprintf(key, args...)
	}
	return global.Translatef(LangFromContext(ctx), key, args...)
}
