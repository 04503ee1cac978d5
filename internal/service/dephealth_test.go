package service

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestNewDephealthService проверяет состав зависимостей без PostgreSQL.
func TestNewDephealthService(t *testing.T) {
	ds, err := NewDephealthService(DephealthConfig{
		ServiceID:     "refadmin",
		Group:         "refadmin",
		APIURL:        "http://api.example.lan:8080",
		APIHealthPath: "/health",
		CheckInterval: 15 * time.Second,
		Registerer:    prometheus.NewRegistry(),
	}, testLogger())
	if err != nil {
		t.Fatalf("NewDephealthService: %v", err)
	}

	deps := ds.Dependencies()
	if len(deps) != 1 || deps[0] != "management-api" {
		t.Errorf("Dependencies() = %v, ожидается [management-api]", deps)
	}

	// До запуска проверок API считается доступным
	if status, _ := ds.CheckReady(); status != "ok" {
		t.Errorf("CheckReady() = %q до первой проверки, ожидается ok", status)
	}
}
