package main

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"ulascansenturk/season-service/config"
	"ulascansenturk/season-service/internal/api/v1/handlers"
	"ulascansenturk/season-service/internal/clock"
	"ulascansenturk/season-service/internal/db/viewlog"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/inmemorycache"
	"ulascansenturk/season-service/internal/service"
)

func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logLevel, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Str("service_name", conf.ServiceName).
		Timestamp().
		Logger()

	ctx, mainCtxStop := context.WithCancel(context.Background())

	var repo viewlog.Repository
	if conf.DatabaseEnabled() {
		db, dbErr := initializeDatabase(conf)
		if dbErr != nil {
			log.Fatal().Err(dbErr).Msg("failed to initialize database")
		}
		repo = viewlog.NewRepository(db)
	} else {
		log.Warn().Msg("DATABASE_HOST not set, view resolutions will not be persisted")
	}

	cacheProvider := inmemorycache.NewInMemoryCacheProvider(time.Duration(time.Second * 60))
	defer cacheProvider.Close()

	providers := []geolocation.Provider{
		geolocation.NewClientProvider(conf.GeolocationTimeout),
		geolocation.NewIPProvider(geolocation.IPProviderConfig{
			BaseURL: conf.IPAPIBaseURL,
			Backoff: geolocation.BackoffConfig{
				MaxRetries:      conf.IPAPIMaxRetries,
				InitialInterval: conf.IPAPIRetryBackoff,
				MaxInterval:     5 * time.Second,
			},
			Timeout:        conf.GeolocationTimeout,
			CacheTTL:       conf.CacheTTL,
			FailedCacheTTL: conf.FailedCacheTTL,
		}, cacheProvider),
		geolocation.NewStaticProvider(conf.StaticLatitude, conf.StaticLongitude),
	}

	viewService := service.NewViewService(providers, clock.New(conf.ClockMode), repo, service.Options{
		DefaultProvider: conf.DefaultProvider,
		ViewTTL:         conf.ViewTTL,
		SweepInterval:   conf.SweepInterval,
	})

	handler := handlers.NewViewHandler(viewService, conf.HTTPTimeoutDuration(), conf.WaitTimeout)

	httpServer := &http.Server{
		Addr:              conf.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: conf.HTTPTimeoutDuration(),
	}

	handleSignals(ctx, mainCtxStop, func() {
		shutdownErr := httpServer.Shutdown(ctx)
		if shutdownErr != nil {
			log.Fatal().Err(shutdownErr).Msg("server shutdown failed")
		}
		viewService.Shutdown()
	})

	log.Info().
		Str("provider", conf.DefaultProvider).
		Str("clock", conf.ClockMode).
		Msgf("started server on %s", conf.ServerAddress)

	serverErr := httpServer.ListenAndServe()
	if serverErr != nil {
		log.Err(serverErr).Msg("server stopped")
	}
	<-ctx.Done()
}

func initializeDatabase(config *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&viewlog.ViewResolution{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(3 * time.Minute)

	return db, nil
}

func handleSignals(ctx context.Context, cancelCtx context.CancelFunc, callback func()) {
	sig := make(chan os.Signal, 1)

	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	const shutdownDuration = 30 * time.Second

	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownDuration)

		go func() {
			<-shutdownCtx.Done()

			if shutdownCtx.Err() == context.DeadlineExceeded {
				panic("graceful shutdown timed out.. forcing exit.")
			}
		}()

		callback()

		cancel()
		cancelCtx()
	}()
}
