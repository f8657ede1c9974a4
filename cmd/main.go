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
	"github.com/redis/go-redis/v9"

	changePaymentStatusHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/change_payment_status"
	changeStatusHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/change_status"
	checkAvailabilityHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/check_availability"
	createReservationHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/create_reservation"
	forceStatusHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/force_status"
	getLocationHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_location"
	getReservationHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_reservation"
	getReservationByCodeHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_reservation_by_code"
	rescheduleReservationHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/reschedule_reservation"
	updateAddOnsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/update_add_ons"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/config"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/locks"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/eventbus"
	catalogService "github.com/m04kA/SMC-StudioBooking/internal/service/catalog"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
	reservationsService "github.com/m04kA/SMC-StudioBooking/internal/service/reservations"
	checkAvailabilityUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/check_availability"
	createReservationUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_reservation"
	rescheduleReservationUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/reschedule_reservation"
	updateAddOnsUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/update_add_ons"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
)

// Интерфейсы, общие для всех usecases
type (
	Locker interface {
		WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
	}

	EventPublisher interface {
		Publish(ctx context.Context, res *domain.Reservation, entries []domain.TimelineEntry) error
	}

	MetricsRecorder interface {
		ObserveCreated()
		ObserveConflict(reason string)
		ObserveCodeRetry()
		ObserveTransition(kind, to string)
		ObservePublishFailure()
	}
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

	log.Info("Starting SMC-StudioBooking...")
	log.Info("Configuration loaded from config.toml (timezone=%s, lock driver=%s)", cfg.Scheduler.Timezone, cfg.Locks.Driver)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var recorder MetricsRecorder = metrics.Nop{}
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		recorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка просто проксирует вызовы
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)

	// Блокировки check-then-insert
	var locker Locker
	var redisClient *redis.Client
	switch cfg.Locks.Driver {
	case config.LockDriverRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Locks.RedisAddr,
			Password: cfg.Locks.RedisPassword,
			DB:       cfg.Locks.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Locks.RedisAddr, err)
		}
		locker = locks.NewRedis(redisClient, cfg.Locks.TTL(), cfg.Locks.RetryInterval(), log)
		log.Info("Using redis locks (addr=%s, ttl=%s)", cfg.Locks.RedisAddr, cfg.Locks.TTL())
	case config.LockDriverLocal:
		locker = locks.NewLocal()
		log.Warn("Using in-process locks: run a single replica only")
	default:
		locker = locks.NewPostgres(wrappedDB, txMgr)
		log.Info("Using PostgreSQL advisory locks")
	}

	// Публикация событий бронирований
	var events EventPublisher = eventbus.Nop{}
	var publisher *eventbus.Publisher
	if cfg.Events.Enabled {
		publisher = eventbus.NewPublisher(eventbus.Options{
			URL:            cfg.Events.AMQPURL,
			Exchange:       cfg.Events.Exchange,
			BufferSize:     cfg.Events.BufferSize,
			DialTimeout:    cfg.Events.DialTimeout(),
			PublishTimeout: cfg.Events.PublishTimeout(),
		}, recorder, log)
		events = publisher
		log.Info("Reservation events are published to exchange %q", cfg.Events.Exchange)
	}

	location := cfg.Scheduler.Location()

	// Инициализируем сервисы
	plannerSvc := planner.NewPlanner(catalogRepository, reservationRepository, log)
	reservationsSvc := reservationsService.NewService(
		reservationRepository,
		txMgr,
		events,
		recorder,
		log,
	)
	catalogSvc := catalogService.NewService(catalogRepository, log)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		catalogRepository,
		plannerSvc,
		locker,
		txMgr,
		events,
		recorder,
		log,
		createReservationUC.Options{
			Location:     location,
			CodeAttempts: cfg.Scheduler.BookingCodeAttempts,
		},
	)

	rescheduleReservationUseCase := rescheduleReservationUC.NewUseCase(
		reservationRepository,
		catalogRepository,
		plannerSvc,
		locker,
		txMgr,
		events,
		recorder,
		log,
		location,
	)

	updateAddOnsUseCase := updateAddOnsUC.NewUseCase(
		reservationRepository,
		catalogRepository,
		plannerSvc,
		locker,
		txMgr,
		events,
		recorder,
		log,
	)

	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		catalogRepository,
		plannerSvc,
		txMgr,
		log,
		location,
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	getReservationByCode := getReservationByCodeHandler.NewHandler(reservationsSvc, log)
	changeStatus := changeStatusHandler.NewHandler(reservationsSvc, log)
	changePaymentStatus := changePaymentStatusHandler.NewHandler(reservationsSvc, log)
	rescheduleReservation := rescheduleReservationHandler.NewHandler(rescheduleReservationUseCase, log)
	updateAddOns := updateAddOnsHandler.NewHandler(updateAddOnsUseCase, log)
	forceStatus := forceStatusHandler.NewHandler(reservationsSvc, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getLocation := getLocationHandler.NewHandler(catalogSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
		api.Use(limiter.Middleware)
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проверка доступности окна или сетки окон на день
	api.HandleFunc("/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// Локация с расписанием и сотрудниками
	api.HandleFunc("/locations/{locationId}", getLocation.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/code/{bookingCode}", getReservationByCode.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}/status", changeStatus.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}/payment-status", changePaymentStatus.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}/reschedule", rescheduleReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}/add-ons", updateAddOns.Handle).Methods(http.MethodPut)

	// --- Администрирование (X-User-Role: admin) ---
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	admin.HandleFunc("/reservations/{reservationId:[0-9]+}/force-status", forceStatus.Handle).Methods(http.MethodPost)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close event publisher: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
