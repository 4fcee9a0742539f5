package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	getHealthHandler "github.com/m04kA/CUP-SyncService/internal/api/handlers/get_health"
	getMappingHandler "github.com/m04kA/CUP-SyncService/internal/api/handlers/get_mapping"
	syncWebhookHandler "github.com/m04kA/CUP-SyncService/internal/api/handlers/sync_webhook"
	updateMappingHandler "github.com/m04kA/CUP-SyncService/internal/api/handlers/update_mapping"
	"github.com/m04kA/CUP-SyncService/internal/api/middleware"
	"github.com/m04kA/CUP-SyncService/internal/config"
	"github.com/m04kA/CUP-SyncService/internal/domain"
	mappingRepo "github.com/m04kA/CUP-SyncService/internal/infra/storage/mapping"
	synclinkRepo "github.com/m04kA/CUP-SyncService/internal/infra/storage/synclink"
	synclogRepo "github.com/m04kA/CUP-SyncService/internal/infra/storage/synclog"
	cupClient "github.com/m04kA/CUP-SyncService/internal/integrations/cupsolidale"
	ghlClient "github.com/m04kA/CUP-SyncService/internal/integrations/gohighlevel"
	appointmentsService "github.com/m04kA/CUP-SyncService/internal/service/appointments"
	contactsService "github.com/m04kA/CUP-SyncService/internal/service/contacts"
	identityService "github.com/m04kA/CUP-SyncService/internal/service/identity"
	syncService "github.com/m04kA/CUP-SyncService/internal/service/sync"
	"github.com/m04kA/CUP-SyncService/pkg/logger"
	"github.com/m04kA/CUP-SyncService/pkg/metrics"
	"github.com/m04kA/CUP-SyncService/pkg/resilience"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting CUP-SyncService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилища: PostgreSQL, либо память при выключенной базе
	var (
		linkStore    syncService.LinkStore
		syncLogStore syncService.SyncLogStore
		mappingStore *mappingRepo.Repository
		initialTable domain.MappingTable
	)

	initialTable = domain.MappingTable{
		Calendars: make(map[string]string),
		Doctors:   make(map[string]string),
	}

	if cfg.Database.Enabled {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		linkStore = synclinkRepo.NewRepository(db)
		syncLogStore = synclogRepo.NewRepository(db)
		mappingStore = mappingRepo.NewRepository(db)

		table, err := mappingStore.LoadTable(context.Background())
		if err != nil {
			log.Fatal("Failed to load mapping table: %v", err)
		}
		initialTable = table
		log.Info("Mapping table loaded: %d calendars, %d doctors",
			len(table.Calendars), len(table.Doctors))
	} else {
		linkStore = synclinkRepo.NewMemoryStore()
		log.Warn("Database disabled: links are kept in memory and lost on restart")
	}

	// Resilience: общие параметры retry, отдельный breaker на каждый upstream
	retryOpts := resilience.Options{
		MaxRetries:      cfg.Sync.MaxRetries,
		BaseDelay:       time.Duration(cfg.Sync.BaseDelayMs) * time.Millisecond,
		MaxDelay:        time.Duration(cfg.Sync.MaxDelayMs) * time.Millisecond,
		ExponentialBase: 2,
		Jitter:          true,
	}
	breakerCooldown := time.Duration(cfg.Sync.BreakerCooldownS) * time.Second

	ghlBreaker := resilience.NewCircuitBreaker("gohighlevel", cfg.Sync.BreakerThreshold, breakerCooldown, log)
	cupBreaker := resilience.NewCircuitBreaker("cupsolidale", cfg.Sync.BreakerThreshold, breakerCooldown, log)

	ghl := ghlClient.NewClient(
		cfg.Ghl.BaseURL,
		cfg.Ghl.APIToken,
		cfg.Ghl.LocationID,
		time.Duration(cfg.Ghl.Timeout)*time.Second,
		resilience.NewRetrier(retryOpts, log),
		ghlBreaker,
		log,
	)
	cup := cupClient.NewClient(
		cfg.Cup.BaseURL,
		cfg.Cup.CompanyCode,
		cfg.Cup.APIKey,
		time.Duration(cfg.Cup.Timeout)*time.Second,
		resilience.NewRetrier(retryOpts, log),
		cupBreaker,
		log,
	)
	if metricsCollector != nil {
		ghl.SetMetrics(metricsCollector)
		cup.SetMetrics(metricsCollector)
		onBreakerChange := func(name string, state resilience.BreakerState) {
			metricsCollector.SetBreakerState(name, string(state))
		}
		ghlBreaker.OnStateChange(onBreakerChange)
		cupBreaker.OnStateChange(onBreakerChange)
		metricsCollector.SetBreakerState("gohighlevel", string(ghlBreaker.State()))
		metricsCollector.SetBreakerState("cupsolidale", string(cupBreaker.State()))
	}
	log.Info("Integration clients initialized (GHL=%s, CUP=%s)", cfg.Ghl.BaseURL, cfg.Cup.BaseURL)

	// Инициализируем сервисы
	mapper := identityService.NewMapper(initialTable, log)
	reconciler := contactsService.NewReconciler(ghl, log)
	synchronizer := appointmentsService.NewSynchronizer(ghl, log)

	// Типизированный nil *metrics.Metrics в интерфейсе не был бы nil,
	// поэтому интерфейсное значение заполняется только при включенных метриках
	var syncMetrics syncService.MetricsRecorder
	if metricsCollector != nil {
		syncMetrics = metricsCollector
	}

	syncSvc := syncService.NewService(
		linkStore,
		syncLogStore,
		reconciler,
		synchronizer,
		mapper,
		syncMetrics,
		log,
	)

	// Инициализируем handlers
	syncWebhook := syncWebhookHandler.NewHandler(syncSvc, log)
	getMapping := getMappingHandler.NewHandler(mapper, log)
	updateMapping := newUpdateMappingHandler(mapper, mappingStore, log)
	getHealth := getHealthHandler.NewHandler(ghl, cup)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	r.HandleFunc("/health", getHealth.Handle).Methods(http.MethodGet)
	r.HandleFunc("/webhook/mapping", getMapping.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (подпись HMAC или API-ключ)
	// ============================================================

	auth := middleware.NewAuth(cfg.Webhook.Secret, log)
	protected := r.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware)

	protected.HandleFunc("/webhook/cup-solidale", syncWebhook.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/webhook/mapping", updateMapping.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// newUpdateMappingHandler прячет nil-хитрость типизированного указателя:
// при выключенной базе store должен быть интерфейсным nil
func newUpdateMappingHandler(
	mapper *identityService.Mapper,
	store *mappingRepo.Repository,
	log updateMappingHandler.Logger,
) *updateMappingHandler.Handler {
	if store == nil {
		return updateMappingHandler.NewHandler(mapper, nil, log)
	}
	return updateMappingHandler.NewHandler(mapper, store, log)
}
