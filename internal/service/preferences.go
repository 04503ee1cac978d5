// preferences.go — сервис UI-настроек консоли: строка поиска и размер
// страницы каждого справочника, активная вкладка. Настройки хранятся
// отдельно для каждого браузера (идентификатор клиента из cookie);
// потеря хранилища возвращает значения по умолчанию.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bigkaa/refadmin/internal/repository"
)

// Ключи настроек.
const (
	// KeyActiveTab — активная вкладка консоли.
	KeyActiveTab = "app.active_tab"
	// suffixSearch — строка поиска справочника: {entity}.search.
	suffixSearch = ".search"
	// suffixPerPage — размер страницы справочника: {entity}.items_per_page.
	suffixPerPage = ".items_per_page"
)

// maxSearchLength — максимальная длина сохраняемой строки поиска (в символах).
const maxSearchLength = 200

// anonymousClient — пространство имён для запросов без идентификатора клиента.
const anonymousClient = "anonymous"

// SearchKey возвращает ключ строки поиска справочника.
func SearchKey(entity string) string { return entity + suffixSearch }

// PerPageKey возвращает ключ размера страницы справочника.
func PerPageKey(entity string) string { return entity + suffixPerPage }

// PreferencesService — типизированный доступ к хранилищу UI-настроек.
type PreferencesService struct {
	store    repository.PreferenceStore
	entities []string
	// validKeys — допустимые ключи и их описание
	validKeys map[string]string
	logger    *slog.Logger
}

// NewPreferencesService создаёт сервис настроек для перечисленных справочников.
func NewPreferencesService(store repository.PreferenceStore, entities []string, logger *slog.Logger) *PreferencesService {
	keys := map[string]string{
		KeyActiveTab: "Активная вкладка",
	}
	for _, e := range entities {
		keys[SearchKey(e)] = "Строка поиска: " + e
		keys[PerPageKey(e)] = "Размер страницы: " + e
	}
	return &PreferencesService{
		store:     store,
		entities:  slices.Clone(entities),
		validKeys: keys,
		logger:    logger.With(slog.String("service", "preferences")),
	}
}

// Get возвращает значение настройки клиента или def, если значение
// отсутствует, ключ неизвестен или хранилище недоступно.
func (s *PreferencesService) Get(ctx context.Context, client, key, def string) string {
	if _, ok := s.validKeys[key]; !ok {
		s.logger.Warn("Запрошен неизвестный ключ настройки", slog.String("key", key))
		return def
	}

	val, err := s.store.Get(ctx, namespaced(client, key))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Ошибка чтения настройки, используется значение по умолчанию",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return def
	}
	return val
}

// Set сохраняет настройку клиента. Пустое значение удаляет настройку.
func (s *PreferencesService) Set(ctx context.Context, client, key, value string) error {
	if _, ok := s.validKeys[key]; !ok {
		return fmt.Errorf("%w: недопустимый ключ настройки %q", ErrValidation, key)
	}
	if err := s.validateValue(key, value); err != nil {
		return err
	}

	nsKey := namespaced(client, key)
	if value == "" {
		if err := s.store.Delete(ctx, nsKey); err != nil {
			return fmt.Errorf("ошибка удаления настройки %q: %w", key, err)
		}
		return nil
	}
	if err := s.store.Set(ctx, nsKey, value); err != nil {
		return fmt.Errorf("ошибка сохранения настройки %q: %w", key, err)
	}

	s.logger.Debug("Настройка обновлена", slog.String("key", key))
	return nil
}

// --- Типизированные геттеры --- //

// Search возвращает сохранённую строку поиска справочника.
func (s *PreferencesService) Search(ctx context.Context, client, entity string) string {
	return s.Get(ctx, client, SearchKey(entity), "")
}

// PerPage возвращает сохранённый размер страницы справочника.
func (s *PreferencesService) PerPage(ctx context.Context, client, entity string) int {
	n, err := strconv.Atoi(s.Get(ctx, client, PerPageKey(entity), ""))
	if err != nil || !slices.Contains(PerPageOptions, n) {
		return DefaultPerPage
	}
	return n
}

// ActiveTab возвращает сохранённую активную вкладку или первый справочник.
func (s *PreferencesService) ActiveTab(ctx context.Context, client string) string {
	def := ""
	if len(s.entities) > 0 {
		def = s.entities[0]
	}
	tab := s.Get(ctx, client, KeyActiveTab, def)
	if !slices.Contains(s.entities, tab) {
		return def
	}
	return tab
}

// --- Валидация значений --- //

// validateValue проверяет корректность значения для указанного ключа.
func (s *PreferencesService) validateValue(key, value string) error {
	switch {
	case key == KeyActiveTab:
		if value != "" && !slices.Contains(s.entities, value) {
			return fmt.Errorf("%w: %s — неизвестная вкладка %q", ErrValidation, key, value)
		}
	case strings.HasSuffix(key, suffixPerPage):
		if value == "" {
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || !slices.Contains(PerPageOptions, n) {
			return fmt.Errorf("%w: %s должен быть одним из %v", ErrValidation, key, PerPageOptions)
		}
	case strings.HasSuffix(key, suffixSearch):
		if utf8.RuneCountInString(value) > maxSearchLength {
			return fmt.Errorf("%w: %s длиннее %d символов", ErrValidation, key, maxSearchLength)
		}
	}
	return nil
}

// namespaced добавляет к ключу идентификатор клиента.
func namespaced(client, key string) string {
	if client == "" {
		client = anonymousClient
	}
	return client + ":" + key
}
