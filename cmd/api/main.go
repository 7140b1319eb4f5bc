// @title        BazarBlot Marketplace API
// @version      1.0.0
// @description  Marketplace backend: registration, login and product listings.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/bazarblot/marketplace/docs"
	"github.com/bazarblot/marketplace/internal/api"
	"github.com/bazarblot/marketplace/internal/api/metrics"
	"github.com/bazarblot/marketplace/internal/core/ports"
	"github.com/bazarblot/marketplace/internal/core/service"
	"github.com/bazarblot/marketplace/internal/infrastructure/config"
	redisstore "github.com/bazarblot/marketplace/internal/infrastructure/db/redis"
	probes "github.com/bazarblot/marketplace/internal/infrastructure/http/handlers"
	"github.com/bazarblot/marketplace/internal/infrastructure/messaging/kafka"
	"github.com/bazarblot/marketplace/internal/infrastructure/queue"
	"github.com/bazarblot/marketplace/internal/infrastructure/seed"
	"github.com/bazarblot/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace-api",
	})

	tokens, err := service.NewTokenService(service.TokenConfig{
		SigningKey: []byte(cfg.JWT.Key),
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		TTL:        cfg.JWT.TTL(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	// ── Store ────────────────────────────────────────────────────────────
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	checks := map[string]probes.Check{"store": st.ping}

	// ── Redis (optional) ─────────────────────────────────────────────────
	var (
		throttle ports.LoginThrottle
		idem     ports.IdempotencyStore
		rdb      *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		throttle = redisstore.NewLoginThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.Lockout())
		idem = redisstore.NewIdempotencyStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Info().Msg("redis disabled: no login lockout, no create idempotency")
	}

	// ── Kafka (optional) ─────────────────────────────────────────────────
	var (
		events     ports.ProductEventPublisher
		dispatcher *queue.Dispatcher
		producer   *kafka.ProductEventProducer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProductEventProducer(cfg.Kafka.Brokers, cfg.Kafka.ProductTopic)
		dispatcher = queue.NewDispatcher(cfg.Kafka.Workers, producer, metrics.ObserveProductEvent, log)
		dispatcher.Start(ctx)
		events = dispatcher
	} else {
		log.Info().Msg("kafka disabled: product events are not published")
	}

	// ── Seed ─────────────────────────────────────────────────────────────
	if cfg.SeedData {
		if err := seed.NewSeeder(st.users, st.products, log).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
	}

	// ── Services & router ────────────────────────────────────────────────
	policy := service.DefaultPasswordPolicy()
	policy.RequireComplex = cfg.Password.RequireComplex

	e, err := api.NewRouter(api.Dependencies{
		Auth:     service.NewAuthService(st.users, tokens, throttle, policy, log),
		Products: service.NewProductService(st.products, st.users, idem, events, log),
		Tokens:   tokens,
		Checks:   checks,
		Log:      log,
		Swagger:  cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Env).
			Str("store", cfg.Store.Driver).
			Msg("marketplace api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	shutdownEvents(shutdownCtx, log, dispatcher, producer)
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}

	log.Info().Msg("marketplace api stopped")
}

// shutdownEvents drains queued events before the producer is closed.
func shutdownEvents(ctx context.Context, log zerolog.Logger, d *queue.Dispatcher, p *kafka.ProductEventProducer) {
	if d != nil {
		if err := d.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("event dispatcher shutdown")
		}
	}
	if p != nil {
		if err := p.Close(); err != nil {
			log.Error().Err(err).Msg("kafka producer close")
		}
	}
}
