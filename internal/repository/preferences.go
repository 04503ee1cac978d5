package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// pgPreferenceStore — PreferenceStore поверх таблицы ui_preferences.
type pgPreferenceStore struct {
	db DBTX
}

// NewPostgresPreferenceStore создаёт хранилище настроек в PostgreSQL.
func NewPostgresPreferenceStore(db DBTX) PreferenceStore {
	return &pgPreferenceStore{db: db}
}

// Get возвращает значение настройки по ключу.
func (r *pgPreferenceStore) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM ui_preferences
		WHERE key = $1`

	var value string
	if err := r.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("ошибка получения ui_preferences[%s]: %w", key, err)
	}
	return value, nil
}

// Set создаёт или обновляет настройку (INSERT ... ON CONFLICT DO UPDATE).
func (r *pgPreferenceStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO ui_preferences (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("ошибка сохранения ui_preferences[%s]: %w", key, err)
	}
	return nil
}

// Delete удаляет настройку по ключу.
func (r *pgPreferenceStore) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM ui_preferences WHERE key = $1`, key); err != nil {
		return fmt.Errorf("ошибка удаления ui_preferences[%s]: %w", key, err)
	}
	return nil
}
