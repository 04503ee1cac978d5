// Пакет server — HTTP-сервер консоли справочников с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apihandlers "github.com/bigkaa/refadmin/internal/api/handlers"
	"github.com/bigkaa/refadmin/internal/api/middleware"
	"github.com/bigkaa/refadmin/internal/config"
	uihandlers "github.com/bigkaa/refadmin/internal/ui/handlers"
	"github.com/bigkaa/refadmin/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/refadmin/internal/ui/middleware"
	"github.com/bigkaa/refadmin/internal/ui/static"
)

// UI — обработчики консоли.
type UI struct {
	Shell   *uihandlers.Shell
	Search  *uihandlers.SearchHandler
	Screens []uihandlers.Screen
	// DefaultLang — язык без cookie и Accept-Language
	DefaultLang string
}

// Server — HTTP-сервер консоли.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, api *apihandlers.APIHandler, ui UI) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      Routes(logger, api, ui),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Routes собирает маршруты:
//   - /health/*, /metrics, /api/v1/* — JSON API и эксплуатационные endpoints;
//   - /static/* — встроенные ресурсы;
//   - /ui/* — консоль (идентификатор клиента и язык в контексте).
func Routes(logger *slog.Logger, api *apihandlers.APIHandler, ui UI) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health/live", api.HealthLive)
	router.Get("/health/ready", api.HealthReady)
	router.Get("/metrics", api.GetMetrics)
	router.Get("/api/v1/search", api.SearchRecords)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	router.Route("/ui", func(r chi.Router) {
		r.Use(uimiddleware.ClientID())
		r.Use(i18n.Middleware(ui.DefaultLang))

		r.Get("/", ui.Shell.HandleIndex)
		r.Post("/lang", uihandlers.HandleSetLanguage)
		r.Get("/search", ui.Search.HandleSearch)
		r.Get("/search/warm", ui.Search.HandleWarm)

		for _, screen := range ui.Screens {
			r.Route("/"+screen.Entity(), screen.Routes)
		}
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
