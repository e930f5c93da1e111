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

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-RoomBookingService/internal/api"
	createBookingHandler "github.com/m04kA/SMC-RoomBookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-RoomBookingService/internal/api/handlers/get_available_slots"
	"github.com/m04kA/SMC-RoomBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBookingService/internal/config"
	"github.com/m04kA/SMC-RoomBookingService/internal/infra/lock/pglock"
	"github.com/m04kA/SMC-RoomBookingService/internal/infra/lock/redislock"
	bookingRepo "github.com/m04kA/SMC-RoomBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-RoomBookingService/internal/service/allocator"
	createBookingUC "github.com/m04kA/SMC-RoomBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-RoomBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomBookingService/pkg/logger"
	"github.com/m04kA/SMC-RoomBookingService/pkg/metrics"
	"github.com/m04kA/SMC-RoomBookingService/pkg/txmanager"
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

	log.Info("Starting SMC-RoomBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
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

	// Обёртка замеряет запросы; без метрик просто прокидывает вызовы
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	bookingRepository := bookingRepo.NewRepository(wrappedDB)

	// Межинстансная блокировка распределения
	var locker allocator.Locker
	switch cfg.Lock.Provider {
	case config.LockProviderRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Lock.RedisAddr,
			Password: cfg.Lock.RedisPassword,
			DB:       cfg.Lock.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Lock.RedisAddr, err)
		}

		locker = redislock.NewLocker(rdb, log,
			redislock.WithPrefix(cfg.Lock.RedisPrefix),
			redislock.WithLeaseTTL(time.Duration(cfg.Lock.LeaseTTL)*time.Millisecond),
			redislock.WithRetryInterval(time.Duration(cfg.Lock.RetryInterval)*time.Millisecond),
		)
		log.Info("Allocation lock: redis lease at %s (ttl=%dms)", cfg.Lock.RedisAddr, cfg.Lock.LeaseTTL)
	default:
		locker = pglock.NewLocker(wrappedDB, txmanager.NewTransactionManager(wrappedDB))
		log.Info("Allocation lock: postgres advisory lock")
	}

	// Каталог комнат и окна обслуживания (валидированы при загрузке конфигурации)
	catalog, err := cfg.Booking.Catalog()
	if err != nil {
		log.Fatal("Invalid room catalog: %v", err)
	}
	maintenance, err := cfg.Booking.MaintenanceWindows()
	if err != nil {
		log.Fatal("Invalid maintenance windows: %v", err)
	}
	log.Info("Rooms: %v, maintenance windows: %v", catalog.Names(), maintenance)

	allocatorOpts := []allocator.Option{}
	if cfg.Lock.Key != 0 {
		allocatorOpts = append(allocatorOpts, allocator.WithLockKey(cfg.Lock.Key))
	}
	if metricsCollector != nil {
		allocatorOpts = append(allocatorOpts, allocator.WithRecorder(metricsCollector))
	}
	roomAllocator := allocator.NewAllocator(catalog, maintenance, bookingRepository, locker, log, allocatorOpts...)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(roomAllocator, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(roomAllocator, log)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routerOpts := api.Options{
		Metrics:     metricsCollector,
		MetricsPath: cfg.Metrics.Path,
	}
	if cfg.Booking.RateLimitRPS > 0 {
		var rateLimitRecorder middleware.RateLimitRecorder
		if metricsCollector != nil {
			rateLimitRecorder = metricsCollector
		}
		limiter := middleware.NewRateLimiter(cfg.Booking.RateLimitRPS, cfg.Booking.RateLimitBurst, rateLimitRecorder, log)
		trustedProxies, err := cfg.Booking.TrustedProxyPrefixes()
		if err != nil {
			log.Fatal("Invalid trusted proxies: %v", err)
		}
		limiter.TrustProxies(trustedProxies)
		limiter.StartJanitor(ctx, 2*time.Minute)
		routerOpts.RateLimiter = limiter
		log.Info("Booking rate limit: %.2f rps, burst %d", cfg.Booking.RateLimitRPS, cfg.Booking.RateLimitBurst)
	}

	r := api.NewRouter(createBooking, getAvailableSlots, routerOpts)

	// Запрос не ждет блокировку дольше RequestTimeout
	handler := http.TimeoutHandler(r, time.Duration(cfg.Server.RequestTimeout)*time.Second, `{"error":"request timeout"}`)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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
	<-ctx.Done()

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

	log.Info("Server stopped gracefully")
}
