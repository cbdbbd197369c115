package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salonbook/internal/api"
	"salonbook/internal/auth"
	"salonbook/internal/booking"
	"salonbook/internal/bot"
	"salonbook/internal/calendar"
	"salonbook/internal/cart"
	"salonbook/internal/catalog"
	"salonbook/internal/config"
	"salonbook/internal/events"
	"salonbook/internal/metrics"
	"salonbook/internal/salonapi"
	"salonbook/internal/schedule"
	"salonbook/internal/slots"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("SALONBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	client := salonapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.BackendTimeout(),
		salonapi.WithAvailabilityPath(cfg.Backend.AvailabilityPath),
		salonapi.WithLogger(&logger),
	)
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	services, err := loadCatalog(ctx, cfg, client, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load service catalog")
	}

	weekStart, _ := cfg.WeekStart()
	newFlow := func() *booking.Flow {
		return booking.NewFlow(
			cart.New(services),
			schedule.NewStore(client, &logger),
			calendar.New(calendar.WithWeekStart(weekStart)),
			slots.NewPicker(),
		)
	}

	sessions := booking.NewSessionStore(cfg.SessionTimeout(), newFlow)
	sessions.StartCleanup(ctx, time.Minute)

	bus := events.NewBus(&logger)
	validate := validator.New()
	svc := booking.NewService(sessions, client, bus, validate, &logger, cfg.Booking.DefaultStylistID)

	server := api.NewServer(api.Config{
		Booking:           svc,
		Catalog:           services,
		Backend:           client,
		Issuer:            auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.TokenTTL()),
		Validate:          validate,
		Logger:            &logger,
		RequestsPerSecond: cfg.RequestsPerSecond(),
		Burst:             cfg.RequestBurst(),
		TrustProxy:        cfg.HTTP.TrustProxy,
	})
	server.StartCleanup(ctx, time.Minute)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, client, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Telegram.Enabled {
		b, err := bot.New(cfg.Telegram.BotToken, cfg.Telegram.Debug, svc, services, cfg.BotMessagesPerSecond(), &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create bot error")
		}
		b.NotifyStaff(ctx, bus, cfg.Telegram.StaffChatIDs)
		go b.Start(ctx)
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("address", cfg.HTTP.Address).Msg("salonbook started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server error")
	}
	logger.Info().Msg("salonbook stopped")
}

// loadCatalog returns the backend catalog or a local one kept in sync with its file.
func loadCatalog(ctx context.Context, cfg *config.Config, client *salonapi.Client, logger *zerolog.Logger) (catalog.Source, error) {
	if cfg.Catalog.Source == "backend" {
		return client.Services(), nil
	}

	local := catalog.NewLocal(nil)
	err := config.WatchServices(ctx, cfg.Catalog.Path, cfg.CatalogWatchInterval(),
		func(sc *config.ServicesConfig) {
			local.Replace(sc.Catalog())
			logger.Info().Int("services", len(sc.Services)).Str("path", cfg.Catalog.Path).Msg("service catalog loaded")
		},
		func(err error) {
			logger.Error().Err(err).Str("path", cfg.Catalog.Path).Msg("service catalog reload failed")
		},
	)
	if err != nil {
		return nil, err
	}
	return local, nil
}

func startHealthServer(ctx context.Context, port int, client *salonapi.Client, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if err := client.HealthCheck(ctxPing); err != nil {
			http.Error(w, "backend not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
