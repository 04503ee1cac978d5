package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryPreferenceStore — PreferenceStore в памяти процесса.
// Ограничен по числу записей; при перезапуске настройки сбрасываются
// к значениям по умолчанию.
type MemoryPreferenceStore struct {
	cache *expirable.LRU[string, string]
}

// NewMemoryPreferenceStore создаёт in-memory хранилище.
// maxSize — максимальное количество записей, ttl — время жизни (0 — без ограничения).
func NewMemoryPreferenceStore(maxSize int, ttl time.Duration) *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		cache: expirable.NewLRU[string, string](maxSize, nil, ttl),
	}
}

// Get возвращает значение настройки.
func (m *MemoryPreferenceStore) Get(_ context.Context, key string) (string, error) {
	val, ok := m.cache.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// Set сохраняет значение настройки.
func (m *MemoryPreferenceStore) Set(_ context.Context, key, value string) error {
	m.cache.Add(key, value)
	return nil
}

// Delete удаляет значение настройки.
func (m *MemoryPreferenceStore) Delete(_ context.Context, key string) error {
	m.cache.Remove(key)
	return nil
}

// Len возвращает текущее число записей.
func (m *MemoryPreferenceStore) Len() int {
	return m.cache.Len()
}

// CheckReady — хранилище в памяти всегда готово.
func (m *MemoryPreferenceStore) CheckReady() (status string, message string) {
	return "ok", "хранилище в памяти"
}
