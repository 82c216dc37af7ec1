package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/qrcall/internal/auth"
	"github.com/dropDatabas3/qrcall/internal/cache"
	"github.com/dropDatabas3/qrcall/internal/config"
	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	httpx "github.com/dropDatabas3/qrcall/internal/http"
	qrctrl "github.com/dropDatabas3/qrcall/internal/http/controllers/qr"
	"github.com/dropDatabas3/qrcall/internal/http/router"
	qrsvc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
	"github.com/dropDatabas3/qrcall/internal/metrics"
	"github.com/dropDatabas3/qrcall/internal/notify"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
	"github.com/dropDatabas3/qrcall/internal/qrtoken"
	"github.com/dropDatabas3/qrcall/internal/rate"
	"github.com/dropDatabas3/qrcall/internal/store/memory"
	"github.com/dropDatabas3/qrcall/internal/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

// version is stamped by the build.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "qrcall:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml (optional)")
	flag.Parse()

	// .env is optional; system environment always applies.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.Log.Env,
		Level:       cfg.Log.Level,
		ServiceName: "qrcall",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	log := logger.L()
	log.Info("starting", logger.String("env", cfg.App.Env), logger.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache (JWT blacklist, aggregate analytics)
	cacheClient, err := cache.New(cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer func() { _ = cacheClient.Close() }()

	// Storage
	var (
		codes     repository.QRRepository
		analytics repository.AnalyticsRepository
		users     repository.UserDirectory
		pinger    repository.Pinger
		pool      func() *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		codes = store.QRCodes()
		analytics = store.Analytics()
		users = store.Users()
		pinger = store
		pool = store.Pool
	default:
		store := memory.New()
		codes = store.QRCodes()
		analytics = store.Analytics()
		users = store.Users()
		pinger = store
		log.Warn("using in-memory storage; data does not survive restarts")
	}

	// Token codec and verifier
	ring, err := qrtoken.NewKeyRing(cfg.QR.SecretKeys)
	if err != nil {
		return fmt.Errorf("keyring: %w", err)
	}
	codec := qrtoken.NewCodec(ring)
	verifier := qrtoken.NewVerifier(ring, codes, cfg.QR.MaxCandidates)

	// Auth
	authVerifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cacheClient)

	// Scan rate limiter
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" {
			limiter = rate.NewRedisLimiter(rdb.NewClient(&rdb.Options{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
			}), "rl:scan:", cfg.Rate.Scan.Limit, cfg.Rate.Scan.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Scan.Limit, cfg.Rate.Scan.Window)
		}
	}

	// Claim notifications
	var sender notify.Sender = notify.Noop{}
	if cfg.SMTP.Host != "" {
		sender = notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}
	notifier := notify.NewClaimNotifier(sender, cfg.SMTP.AdminAddr)

	// Metrics
	metricsHandler, err := metrics.Register(metrics.Config{Pool: pool})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	services := qrsvc.NewServices(qrsvc.Deps{
		Codes:     codes,
		Analytics: analytics,
		Users:     users,
		Codec:     codec,
		Verifier:  verifier,
		Links:     qrsvc.NewLinkService(cfg.Server.PublicBaseURL, 256),
		Cache:     cacheClient,
		Notifier:  notifier,
	})

	handler := router.New(router.Deps{
		QR:             qrctrl.NewControllers(services),
		Verifier:       authVerifier,
		AdminRole:      cfg.Auth.AdminRole,
		Limiter:        limiter,
		MetricsHandler: metricsHandler,
		Ping:           pinger.Ping,
	})

	srv := httpx.NewServer(httpx.ServerConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("stopped cleanly")
	return nil
}
