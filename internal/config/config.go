// Пакет config — загрузка и валидация конфигурации refadmin
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Бэкенды хранилища UI-настроек.
const (
	PrefsBackendMemory   = "memory"
	PrefsBackendPostgres = "postgres"
	PrefsBackendRedis    = "redis"
)

// Config содержит все параметры конфигурации refadmin.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Язык интерфейса по умолчанию (fr, en)
	DefaultLang string

	// --- Management API ---

	// Базовый URL Management API
	APIURL string
	// Статический bearer-токен (взаимоисключим с client credentials)
	APIToken string
	// URL token endpoint для Client Credentials flow
	APITokenURL string
	// Client ID для Client Credentials flow
	APIClientID string
	// Client Secret для Client Credentials flow
	APIClientSecret string
	// Таймаут запроса к API
	APITimeout time.Duration
	// Число повторов GET-запросов
	APIRetryCount int
	// Путь к CA-сертификату API (опционально)
	APICACertPath string
	// Путь health endpoint API для topologymetrics
	APIHealthPath string

	// --- Кэш списков ---

	// Время жизни кэшированного списка справочника
	CacheTTL time.Duration

	// --- Хранилище UI-настроек ---

	// Бэкенд: memory, postgres, redis
	PrefsBackend string
	// Максимальное число записей memory-бэкенда
	PrefsMemorySize int
	// Время жизни настройки (0 — без ограничения)
	PrefsTTL time.Duration

	// --- PostgreSQL (при RA_PREFS_BACKEND=postgres) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Redis (при RA_PREFS_BACKEND=redis) ---

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// --- Функции с особым поведением формы пользователя ---

	// Явные идентификаторы функций (0 — определить по названию)
	RoleIDs RoleIDs
	// Названия функций для автоопределения по справочнику
	RoleTitles RoleTitles

	// --- Мониторинг ---

	// Группа сервиса для topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// RoleIDs — явно заданные идентификаторы функций.
type RoleIDs struct {
	MultiCentre    int64
	Agent          int64
	Confirmateur   int64
	Superviseur    int64
	REConfirmation int64
	RPQualif       int64
}

// RoleTitles — названия функций в справочнике fonctions.
type RoleTitles struct {
	MultiCentre    string
	Agent          string
	Confirmateur   string
	Superviseur    string
	REConfirmation string
	RPQualif       string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// RA_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("RA_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("RA_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("RA_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// RA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("RA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("RA_LOG_LEVEL: %w", err)
	}

	// RA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("RA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("RA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// RA_DEFAULT_LANG — язык по умолчанию (fr)
	cfg.DefaultLang = strings.ToLower(getEnvDefault("RA_DEFAULT_LANG", "fr"))
	if cfg.DefaultLang != "fr" && cfg.DefaultLang != "en" {
		return nil, fmt.Errorf("RA_DEFAULT_LANG: недопустимое значение %q, допустимые: fr, en", cfg.DefaultLang)
	}

	// --- Management API ---

	// RA_API_URL — обязательный
	cfg.APIURL, err = getEnvRequired("RA_API_URL")
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	cfg.APIToken = getEnvDefault("RA_API_TOKEN", "")
	cfg.APITokenURL = getEnvDefault("RA_API_TOKEN_URL", "")
	cfg.APIClientID = getEnvDefault("RA_API_CLIENT_ID", "")
	cfg.APIClientSecret = getEnvDefault("RA_API_CLIENT_SECRET", "")

	if cfg.APIToken != "" && cfg.APITokenURL != "" {
		return nil, fmt.Errorf("RA_API_TOKEN и RA_API_TOKEN_URL взаимоисключающие")
	}
	if cfg.APITokenURL != "" && (cfg.APIClientID == "" || cfg.APIClientSecret == "") {
		return nil, fmt.Errorf("RA_API_TOKEN_URL: требуются RA_API_CLIENT_ID и RA_API_CLIENT_SECRET")
	}

	// RA_API_TIMEOUT — таймаут запроса (по умолчанию 30s)
	cfg.APITimeout, err = getEnvDuration("RA_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RA_API_TIMEOUT: %w", err)
	}

	// RA_API_RETRY_COUNT — повторы GET (по умолчанию 3)
	cfg.APIRetryCount, err = getEnvInt("RA_API_RETRY_COUNT", 3)
	if err != nil {
		return nil, fmt.Errorf("RA_API_RETRY_COUNT: %w", err)
	}
	if cfg.APIRetryCount < 0 || cfg.APIRetryCount > 10 {
		return nil, fmt.Errorf("RA_API_RETRY_COUNT: значение %d вне допустимого диапазона 0-10", cfg.APIRetryCount)
	}

	cfg.APICACertPath = getEnvDefault("RA_API_CA_CERT_PATH", "")
	cfg.APIHealthPath = getEnvDefault("RA_API_HEALTH_PATH", "/health")

	// --- Кэш ---

	// RA_CACHE_TTL — время жизни списка в кэше (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("RA_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("RA_CACHE_TTL: %w", err)
	}

	// --- Хранилище UI-настроек ---

	cfg.PrefsBackend = strings.ToLower(getEnvDefault("RA_PREFS_BACKEND", PrefsBackendMemory))

	cfg.PrefsMemorySize, err = getEnvInt("RA_PREFS_MEMORY_SIZE", 4096)
	if err != nil {
		return nil, fmt.Errorf("RA_PREFS_MEMORY_SIZE: %w", err)
	}
	if cfg.PrefsMemorySize < 1 {
		return nil, fmt.Errorf("RA_PREFS_MEMORY_SIZE: значение должно быть положительным")
	}

	// RA_PREFS_TTL — время жизни настройки (по умолчанию 720h)
	cfg.PrefsTTL, err = getEnvDuration("RA_PREFS_TTL", 720*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RA_PREFS_TTL: %w", err)
	}

	switch cfg.PrefsBackend {
	case PrefsBackendMemory:
	case PrefsBackendPostgres:
		if err := loadPostgres(cfg); err != nil {
			return nil, err
		}
	case PrefsBackendRedis:
		if err := loadRedis(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("RA_PREFS_BACKEND: недопустимое значение %q, допустимые: memory, postgres, redis", cfg.PrefsBackend)
	}

	// --- Функции ---

	if err := loadRoles(cfg); err != nil {
		return nil, err
	}

	// --- Мониторинг ---

	cfg.DephealthGroup = getEnvDefault("RA_DEPHEALTH_GROUP", "refadmin")

	// RA_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("RA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// RA_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("RA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RA_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// loadPostgres читает параметры PostgreSQL.
func loadPostgres(cfg *Config) error {
	var err error

	if cfg.DBHost, err = getEnvRequired("RA_DB_HOST"); err != nil {
		return err
	}
	if cfg.DBPort, err = getEnvInt("RA_DB_PORT", 5432); err != nil {
		return fmt.Errorf("RA_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("RA_DB_NAME"); err != nil {
		return err
	}
	if cfg.DBUser, err = getEnvRequired("RA_DB_USER"); err != nil {
		return err
	}
	if cfg.DBPassword, err = getEnvRequired("RA_DB_PASSWORD"); err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("RA_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("RA_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	return nil
}

// loadRedis читает параметры Redis.
func loadRedis(cfg *Config) error {
	var err error

	if cfg.RedisAddr, err = getEnvRequired("RA_REDIS_ADDR"); err != nil {
		return err
	}
	cfg.RedisPassword = getEnvDefault("RA_REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvInt("RA_REDIS_DB", 0); err != nil {
		return fmt.Errorf("RA_REDIS_DB: %w", err)
	}
	if cfg.RedisDB < 0 || cfg.RedisDB > 15 {
		return fmt.Errorf("RA_REDIS_DB: значение %d вне допустимого диапазона 0-15", cfg.RedisDB)
	}
	return nil
}

// loadRoles читает идентификаторы и названия функций.
func loadRoles(cfg *Config) error {
	ids := []struct {
		key string
		dst *int64
	}{
		{"RA_ROLE_MULTICENTRE_ID", &cfg.RoleIDs.MultiCentre},
		{"RA_ROLE_AGENT_ID", &cfg.RoleIDs.Agent},
		{"RA_ROLE_CONFIRMATEUR_ID", &cfg.RoleIDs.Confirmateur},
		{"RA_ROLE_SUPERVISEUR_ID", &cfg.RoleIDs.Superviseur},
		{"RA_ROLE_RE_CONFIRMATION_ID", &cfg.RoleIDs.REConfirmation},
		{"RA_ROLE_RP_QUALIF_ID", &cfg.RoleIDs.RPQualif},
	}
	for _, e := range ids {
		v, err := getEnvInt64(e.key, 0)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		if v < 0 {
			return fmt.Errorf("%s: идентификатор не может быть отрицательным", e.key)
		}
		*e.dst = v
	}

	cfg.RoleTitles = RoleTitles{
		MultiCentre:    getEnvDefault("RA_ROLE_MULTICENTRE_TITLE", "Multi-centre"),
		Agent:          getEnvDefault("RA_ROLE_AGENT_TITLE", "Agent"),
		Confirmateur:   getEnvDefault("RA_ROLE_CONFIRMATEUR_TITLE", "Confirmateur"),
		Superviseur:    getEnvDefault("RA_ROLE_SUPERVISEUR_TITLE", "Superviseur"),
		REConfirmation: getEnvDefault("RA_ROLE_RE_CONFIRMATION_TITLE", "RE Confirmation"),
		RPQualif:       getEnvDefault("RA_ROLE_RP_QUALIF_TITLE", "RP Qualif"),
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL (для topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 — то же для int64 (идентификаторы записей).
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
