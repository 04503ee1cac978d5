// Точка входа refadmin — консоль управления справочниками внешней системы.
// Загружает конфигурацию, настраивает источник токена и клиент Management API,
// создаёт справочники и сервисный слой, выбирает хранилище UI-настроек
// (memory, PostgreSQL с миграциями или Redis), запускает topologymetrics
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/refadmin/internal/api/handlers"
	"github.com/bigkaa/refadmin/internal/config"
	"github.com/bigkaa/refadmin/internal/database"
	"github.com/bigkaa/refadmin/internal/domain/filter"
	"github.com/bigkaa/refadmin/internal/domain/model"
	"github.com/bigkaa/refadmin/internal/domain/rolepolicy"
	"github.com/bigkaa/refadmin/internal/mgmtclient"
	"github.com/bigkaa/refadmin/internal/repository"
	"github.com/bigkaa/refadmin/internal/server"
	"github.com/bigkaa/refadmin/internal/service"
	"github.com/bigkaa/refadmin/internal/tokensource"
	uihandlers "github.com/bigkaa/refadmin/internal/ui/handlers"
	"github.com/bigkaa/refadmin/internal/ui/i18n"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("refadmin запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("prefs_backend", cfg.PrefsBackend),
	)

	if os.Getenv("RA_DEPHEALTH_GROUP") == "" {
		logger.Warn("RA_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Каталоги переводов
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// 4. Источник токена Management API
	var tokens mgmtclient.TokenProvider
	switch {
	case cfg.APITokenURL != "":
		cc := tokensource.NewClientCredentials(cfg.APITokenURL, cfg.APIClientID, cfg.APIClientSecret, cfg.APITimeout, logger)
		tokens = cc.Token
		logger.Info("Токен API: client credentials", slog.String("token_url", cfg.APITokenURL))
	case cfg.APIToken != "":
		tokens = tokensource.Static(cfg.APIToken)
		logger.Info("Токен API: статический")
	default:
		logger.Warn("Токен Management API не задан, запросы выполняются без авторизации")
	}

	// 5. Клиент Management API
	api, err := mgmtclient.New(mgmtclient.Options{
		BaseURL:       cfg.APIURL,
		Timeout:       cfg.APITimeout,
		RetryCount:    cfg.APIRetryCount,
		CACertPath:    cfg.APICACertPath,
		TokenProvider: tokens,
	}, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента Management API", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Роли функций: явные id из конфигурации + автоопределение по названиям
	roles := service.NewRoleService(api,
		rolepolicy.RoleTitles(cfg.RoleTitles),
		rolepolicy.RoleMap(cfg.RoleIDs),
		cfg.CacheTTL,
		logger,
	)

	// 7. Справочники
	opts := service.CatalogOptions{TTL: cfg.CacheTTL}
	fonctionOpts := service.CatalogOptions{TTL: cfg.CacheTTL, OnChange: roles.Invalidate}
	cats := &service.Catalogs{
		Centres: service.NewCatalog[model.Centre](mgmtclient.ResourceCentres,
			mgmtclient.NewResource[model.Centre](api, mgmtclient.ResourceCentres), filter.CentreFields, opts, logger),
		Utilisateurs: service.NewCatalog[model.Utilisateur](mgmtclient.ResourceUtilisateurs,
			mgmtclient.NewResource[model.Utilisateur](api, mgmtclient.ResourceUtilisateurs), filter.UtilisateurFields, opts, logger),
		Departements: service.NewCatalog[model.Departement](mgmtclient.ResourceDepartements,
			mgmtclient.NewResource[model.Departement](api, mgmtclient.ResourceDepartements), filter.DepartementFields, opts, logger),
		Produits: service.NewCatalog[model.Produit](mgmtclient.ResourceProduits,
			mgmtclient.NewResource[model.Produit](api, mgmtclient.ResourceProduits), filter.ProduitFields, opts, logger),
		Fonctions: service.NewCatalog[model.Fonction](mgmtclient.ResourceFonctions,
			mgmtclient.NewResource[model.Fonction](api, mgmtclient.ResourceFonctions), filter.FonctionFields, fonctionOpts, logger),
		Etats: service.NewCatalog[model.Etat](mgmtclient.ResourceEtats,
			mgmtclient.NewResource[model.Etat](api, mgmtclient.ResourceEtats), filter.EtatFields, opts, logger),
		SousEtats: service.NewCatalog[model.SousEtat](mgmtclient.ResourceSousEtats,
			mgmtclient.NewResource[model.SousEtat](api, mgmtclient.ResourceSousEtats), filter.SousEtatFields, opts, logger),
		Professions: service.NewCatalog[model.Profession](mgmtclient.ResourceProfessions,
			mgmtclient.NewResource[model.Profession](api, mgmtclient.ResourceProfessions), filter.ProfessionFields, opts, logger),
		TypesContrat: service.NewCatalog[model.TypeContrat](mgmtclient.ResourceTypesContrat,
			mgmtclient.NewResource[model.TypeContrat](api, mgmtclient.ResourceTypesContrat), filter.TypeContratFields, opts, logger),
		ModesChauffage: service.NewCatalog[model.ModeChauffage](mgmtclient.ResourceModesChauffage,
			mgmtclient.NewResource[model.ModeChauffage](api, mgmtclient.ResourceModesChauffage), filter.ModeChauffageFields, opts, logger),
		Installateurs: service.NewCatalog[model.Installateur](mgmtclient.ResourceInstallateurs,
			mgmtclient.NewResource[model.Installateur](api, mgmtclient.ResourceInstallateurs), filter.InstallateurFields, opts, logger),
	}

	// Ссылки sous-etats → etats и utilisateurs → fonctions/centres
	// проверяются до отправки изменений в API
	cats.LinkReferences()

	// 8. Хранилище UI-настроек
	prefsStore, prefsChecker, pgDB, closeStore := openPreferenceStore(ctx, cfg, logger)
	defer closeStore()

	// 9. Services
	users := service.NewUserService(cats.Utilisateurs, roles, api, logger)
	prefs := service.NewPreferencesService(prefsStore, uihandlers.Tabs, logger)
	search := service.NewSearchService(cats, logger)

	// 10. topologymetrics — мониторинг Management API (+ PostgreSQL)
	dephealthCfg := service.DephealthConfig{
		ServiceID:     "refadmin",
		Group:         cfg.DephealthGroup,
		APIURL:        cfg.APIURL,
		APIHealthPath: cfg.APIHealthPath,
		CheckInterval: cfg.DephealthCheckInterval,
	}
	if pgDB != nil {
		dephealthCfg.DB = pgDB
		dephealthCfg.DBURL = cfg.DatabaseURL()
	}

	checkers := []handlers.NamedChecker{{Name: "preferences", Checker: prefsChecker}}
	dephealthSvc, dephealthErr := service.NewDephealthService(dephealthCfg, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
		checkers = append(checkers, handlers.NamedChecker{Name: "management_api", Checker: dephealthSvc})
	}

	// 11. JSON API и health
	apiHandler := handlers.NewAPIHandler(handlers.NewHealthHandler(checkers...), search, logger)

	// 12. Консоль
	shell := uihandlers.NewShell(uihandlers.Tabs, prefs, logger)
	ui := server.UI{
		Shell:       shell,
		Search:      uihandlers.NewSearchHandler(search, logger),
		Screens:     uihandlers.NewScreens(cats, users, shell, logger),
		DefaultLang: cfg.DefaultLang,
	}

	// 13. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, ui)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 14. Graceful shutdown фоновых задач
	logger.Info("Останавливаем фоновые задачи...")
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("refadmin остановлен")
}

// openPreferenceStore открывает хранилище UI-настроек выбранного бэкенда.
// Возвращает хранилище, его readiness checker, *sql.DB для topologymetrics
// (только для PostgreSQL) и функцию закрытия.
func openPreferenceStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (
	repository.PreferenceStore, handlers.ReadinessChecker, *sql.DB, func(),
) {
	switch cfg.PrefsBackend {
	case config.PrefsBackendPostgres:
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}

		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}

		// Адаптер pgxpool → *sql.DB для topologymetrics: проверка идёт
		// через существующий пул соединений.
		pgDB := stdlib.OpenDBFromPool(pool)
		return repository.NewPostgresPreferenceStore(pool), database.NewReadinessChecker(pool), pgDB,
			closePool(pool, pgDB)

	case config.PrefsBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Недоступный Redis не мешает запуску: настройки вернутся к значениям по умолчанию
			logger.Warn("Redis недоступен", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		} else {
			logger.Info("Подключение к Redis установлено", slog.String("addr", cfg.RedisAddr))
		}
		store := repository.NewRedisPreferenceStore(client, cfg.PrefsTTL)
		return store, store, nil, func() { _ = client.Close() }

	default:
		store := repository.NewMemoryPreferenceStore(cfg.PrefsMemorySize, cfg.PrefsTTL)
		return store, store, nil, func() {}
	}
}

// closePool закрывает адаптер *sql.DB и пул pgx.
func closePool(pool *pgxpool.Pool, db *sql.DB) func() {
	return func() {
		_ = db.Close()
		pool.Close()
	}
}
