package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/config"
	"github.com/ignatzorin/petmeet-backend/internal/db"
	"github.com/ignatzorin/petmeet-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/petmeet-backend/internal/http/handlers"
	"github.com/ignatzorin/petmeet-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/petmeet-backend/internal/http/router"
	"github.com/ignatzorin/petmeet-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/petmeet-backend/internal/interface/http/handler"
	"github.com/ignatzorin/petmeet-backend/internal/lock"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
	"github.com/ignatzorin/petmeet-backend/internal/repository"
	"github.com/ignatzorin/petmeet-backend/internal/service"
	"github.com/ignatzorin/petmeet-backend/internal/sweeper"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/appointment"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
	"github.com/ignatzorin/petmeet-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	appClock, err := clock.NewZoneClock(cfg.Timezone)
	if err != nil {
		log.Fatalf("main: некорректный часовой пояс: %v", err)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, os.DirFS(cfg.MigrationsPath)); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("main: redis недоступен: %v", err)
		}
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Репозитории.
	appointmentRepo := persistence.NewAppointmentRepositoryAdapter(dbConn)
	locationRepo := persistence.NewLocationRepositoryAdapter(dbConn)
	matchReader := persistence.NewMatchReaderAdapter(dbConn)
	messageCounter := persistence.NewMessageCounterAdapter(dbConn)
	petReader := persistence.NewPetProfileReaderAdapter(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты и уведомления.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)
	notificationService := service.NewNotificationService(notificationRepo, hub)

	// Use cases.
	createLocation := location.NewCreateLocationUseCase(locationRepo, appClock)
	gate := appointment.NewEligibilityGate(matchReader, messageCounter, petReader, appointmentRepo)
	checker := appointment.NewConflictChecker(appointmentRepo)

	appointmentHandler := handler.NewAppointmentHandler(handler.AppointmentUseCases{
		CheckEligibility: appointment.NewCheckEligibilityUseCase(matchReader, gate),
		Create:           appointment.NewCreateAppointmentUseCase(appointmentRepo, petReader, gate, locationRepo, createLocation, notificationService, appClock),
		Respond:          appointment.NewRespondAppointmentUseCase(appointmentRepo, notificationService, appClock),
		CounterOffer:     appointment.NewCounterOfferUseCase(appointmentRepo, locationRepo, createLocation, notificationService, appClock),
		Cancel:           appointment.NewCancelAppointmentUseCase(appointmentRepo, notificationService, appClock),
		CheckIn:          appointment.NewCheckInUseCase(appointmentRepo, locationRepo, notificationService, appClock),
		Complete:         appointment.NewCompleteAppointmentUseCase(appointmentRepo, notificationService, appClock),
		Get:              appointment.NewGetAppointmentUseCase(appointmentRepo, locationRepo, checker),
		ListByMatch:      appointment.NewListMatchAppointmentsUseCase(appointmentRepo, matchReader, locationRepo, checker),
		ListMine:         appointment.NewListMyAppointmentsUseCase(appointmentRepo, locationRepo, checker),
	}, appClock.Location())
	locationHandler := handler.NewLocationHandler(
		createLocation,
		location.NewGetLocationUseCase(locationRepo),
		location.NewGetRecentLocationsUseCase(locationRepo),
	)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)

	checks := map[string]httpHandlers.CheckFunc{"database": dbConn.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthHandler := httpHandlers.NewHealthHandler(checks)

	rateLimitStore, err := middleware.NewRateLimitStore(rdb)
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	// Свипер просроченных встреч.
	var sweeperOpts []sweeper.Option
	if rdb != nil {
		sweeperOpts = append(sweeperOpts, sweeper.WithLocker(lock.NewRedisLocker(rdb)))
	}
	appointmentSweeper := sweeper.New(appointmentRepo, notificationService, appClock, sweeper.Config{
		Interval:  cfg.SweeperInterval,
		BatchSize: cfg.SweeperBatchSize,
		LockTTL:   cfg.SweeperLockTTL,
	}, sweeperOpts...)
	if err := appointmentSweeper.Start(ctx); err != nil {
		log.Fatalf("main: не удалось запустить свипер: %v", err)
	}
	defer appointmentSweeper.Stop()

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, appointmentHandler, locationHandler, wsHandler, healthHandler, tokenManager, rateLimitStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
