package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisKeyPrefix — префикс ключей настроек в Redis.
const RedisKeyPrefix = "refadmin:prefs:"

// RedisPreferenceStore — PreferenceStore поверх Redis.
// ttl > 0 задаёт время жизни каждой настройки (продлевается при записи).
type RedisPreferenceStore struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedisPreferenceStore создаёт хранилище настроек в Redis.
func NewRedisPreferenceStore(c *redis.Client, ttl time.Duration) *RedisPreferenceStore {
	return &RedisPreferenceStore{c: c, ttl: ttl}
}

// Get возвращает значение настройки.
func (r *RedisPreferenceStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, RedisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("ошибка чтения настройки %q из Redis: %w", key, err)
	}
	return val, nil
}

// Set сохраняет значение настройки.
func (r *RedisPreferenceStore) Set(ctx context.Context, key, value string) error {
	if err := r.c.Set(ctx, RedisKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи настройки %q в Redis: %w", key, err)
	}
	return nil
}

// Delete удаляет значение настройки.
func (r *RedisPreferenceStore) Delete(ctx context.Context, key string) error {
	if err := r.c.Del(ctx, RedisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("ошибка удаления настройки %q из Redis: %w", key, err)
	}
	return nil
}

// CheckReady проверяет доступность Redis через PING.
func (r *RedisPreferenceStore) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.c.Ping(ctx).Err(); err != nil {
		return "fail", fmt.Sprintf("Redis недоступен: %v", err)
	}
	return "ok", "подключение активно"
}
