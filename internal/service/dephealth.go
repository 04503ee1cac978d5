// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// refadmin мониторит:
//   - Management API — HTTP checker к health endpoint (critical)
//   - PostgreSQL — SQL checker через pgxpool, только при postgres-бэкенде
//     UI-настроек (не critical: потеря настроек не ломает консоль)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для Management API
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения
	ServiceID string
	// Group — имя группы в метриках
	Group string
	// APIURL — базовый URL Management API
	APIURL string
	// APIHealthPath — путь health endpoint API
	APIHealthPath string
	// DB — *sql.DB поверх pgxpool (nil — PostgreSQL не мониторится)
	DB *sql.DB
	// DBURL — URL PostgreSQL для меток метрик
	DBURL string
	// CheckInterval — интервал проверки
	CheckInterval time.Duration
	// Registerer — Prometheus registerer (nil — глобальный)
	Registerer prometheus.Registerer
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	deps   []string
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.HTTP("management-api",
			dephealth.FromURL(cfg.APIURL),
			dephealth.WithHTTPHealthPath(cfg.APIHealthPath),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	}
	deps := []string{"management-api"}

	if cfg.DB != nil {
		opts = append(opts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.DBURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(false),
		))
		deps = append(deps, "postgresql")
	}
	if cfg.Registerer != nil {
		opts = append(opts, dephealth.WithRegisterer(cfg.Registerer))
	}

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		deps:   deps,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Dependencies возвращает имена мониторимых зависимостей.
func (ds *DephealthService) Dependencies() []string {
	return ds.deps
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен", slog.Any("dependencies", ds.deps))
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// CheckReady сообщает готовность по критичной зависимости Management API.
// Health() возвращает ключи формата "dependency:host:port".
// До первой проверки зависимость считается доступной.
func (ds *DephealthService) CheckReady() (status string, message string) {
	for key, ok := range ds.dh.Health() {
		if strings.HasPrefix(key, "management-api") && !ok {
			return "fail", "Management API недоступен"
		}
	}
	return "ok", "Management API доступен"
}
