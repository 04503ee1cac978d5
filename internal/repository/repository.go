// Пакет repository — хранилища UI-настроек консоли.
// Три реализации PreferenceStore: PostgreSQL (чистый SQL через pgx),
// Redis (go-redis) и in-memory LRU (golang-lru).
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound — настройка не найдена.
var ErrNotFound = errors.New("запись не найдена")

// PreferenceStore — key-value хранилище UI-настроек.
// Ключ уже содержит пространство имён клиента.
type PreferenceStore interface {
	// Get возвращает значение по ключу. Если не найдено — ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set создаёт или обновляет значение.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет значение. Отсутствующий ключ не считается ошибкой.
	Delete(ctx context.Context, key string) error
}

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
