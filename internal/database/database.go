// Пакет database — PostgreSQL-бэкенд UI-настроек (RA_PREFS_BACKEND=postgres):
// пул pgx, миграции golang-migrate из встроенных SQL и проверка готовности.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/refadmin/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// preferencesTable — таблица, создаваемая миграциями.
const preferencesTable = "ui_preferences"

// Настройки пула: нагрузка на хранилище настроек — пара запросов на экран.
const (
	maxConns        = 4
	maxConnIdleTime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Connect создаёт пул подключений и проверяет доступность PostgreSQL.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolCfg.MaxConns = maxConns
	poolCfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула подключений: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	logger.Info("Подключение к PostgreSQL установлено",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", maxConns),
	)
	return pool, nil
}

// migrationURL — адрес для драйвера pgx5 golang-migrate.
// Учётные данные и sslmode экранируются.
func migrationURL(cfg *config.Config) string {
	return (&url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + strconv.Itoa(cfg.DBPort),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {cfg.DBSSLMode}}.Encode(),
	}).String()
}

// Migrate применяет встроенные миграции. Отсутствие новых миграций не ошибка.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL(cfg))
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("Новых миграций нет")
	case err != nil:
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Схема настроек актуальна",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// ReadinessChecker — готовность PostgreSQL-хранилища настроек.
type ReadinessChecker struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewReadinessChecker создаёт проверку готовности для пула pool.
func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{pool: pool, timeout: 3 * time.Second}
}

// CheckReady:
//   - fail — PostgreSQL недоступен или таблица настроек не создана;
//   - degraded — все соединения пула заняты;
//   - ok — иначе.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var table *string
	err := c.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", "public."+preferencesTable).Scan(&table)
	if err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	if table == nil {
		return "fail", "таблица " + preferencesTable + " отсутствует, миграции не применены"
	}

	if stat := c.pool.Stat(); stat.MaxConns() > 0 && stat.AcquiredConns() >= stat.MaxConns() {
		return "degraded", fmt.Sprintf("заняты все соединения пула (%d)", stat.MaxConns())
	}
	return "ok", "подключение активно"
}
