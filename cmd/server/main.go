// Command server runs the patrolboard roster service: HTTP surface,
// persistence gateway, draft recovery cache, and audit pipeline. Business
// logic lives in the internal packages; main only wires and supervises.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"patrolboard/internal/audit"
	auditkafka "patrolboard/internal/audit/kafka"
	auditmemory "patrolboard/internal/audit/store/memory"
	auditpostgres "patrolboard/internal/audit/store/postgres"
	"patrolboard/internal/patrol"
	"patrolboard/internal/patrol/metrics"
	"patrolboard/internal/patrol/service"
	"patrolboard/internal/patrol/store/draftcache"
	"patrolboard/internal/patrol/store/generator"
	"patrolboard/internal/patrol/store/memory"
	"patrolboard/internal/patrol/store/postgres"
	"patrolboard/internal/patrol/store/sqlite"
	"patrolboard/internal/platform/config"
	"patrolboard/internal/platform/httpserver"
	"patrolboard/internal/platform/logger"
	platformredis "patrolboard/internal/platform/redis"
	"patrolboard/pkg/platform/middleware/admin"
	"patrolboard/pkg/platform/middleware/metadata"
	"patrolboard/pkg/platform/middleware/request"
	"patrolboard/pkg/platform/middleware/requesttime"
)

const auditInboxSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "patrolboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := generator.Snake{}

	gateway, auditStore, cleanup, err := buildStores(ctx, cfg, gen, log)
	if err != nil {
		return err
	}
	defer cleanup()

	inbox := make(chan audit.Event, auditInboxSize)
	worker := audit.NewWorker(auditStore, inbox, log)
	sinks := audit.Fanout{audit.NewChannelPublisher(inbox)}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("connect kafka audit publisher: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafkaPublisher.Close(flushCtx)
		}()
		sinks = append(sinks, kafkaPublisher)
		log.Info("kafka audit publisher enabled", "topic", cfg.Kafka.Topic)
	}

	m := metrics.New()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(sinks),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		opts = append(opts, service.WithDraftCache(draftcache.New(redisClient.Client, cfg.DraftTTL)))
		log.Info("draft recovery cache enabled", "ttl", cfg.DraftTTL)
	}

	svc := patrol.NewService(gateway, opts...)
	router := buildRouter(cfg, svc, log, redisClient)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := worker.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		log.Info("patrolboard listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// buildStores picks the persistence gateway and the audit store from the
// configuration: PostgreSQL when a URL is set, then SQLite, then memory.
func buildStores(ctx context.Context, cfg config.Config, gen generator.Snake, log *slog.Logger) (service.Gateway, audit.Store, func(), error) {
	switch {
	case cfg.PostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres pool: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("open audit db: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			pool.Close()
			return nil, nil, nil, fmt.Errorf("ping audit db: %w", err)
		}
		log.Info("using postgres gateway")
		cleanup := func() {
			_ = db.Close()
			pool.Close()
		}
		return postgres.NewStore(pool, gen), auditpostgres.New(db), cleanup, nil

	case cfg.SQLitePath != "":
		store, err := sqlite.NewStore(cfg.SQLitePath, gen)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("using sqlite gateway", "path", cfg.SQLitePath)
		return store, auditmemory.New(), func() { _ = store.Close() }, nil

	default:
		log.Info("using in-memory gateway")
		return memory.NewStore(gen), auditmemory.New(), func() {}, nil
	}
}

func buildRouter(cfg config.Config, svc *patrol.Service, log *slog.Logger, redisClient *platformredis.Client) chi.Router {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(request.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(requesttime.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				log.WarnContext(r.Context(), "redis health check failed", "error", err)
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(admin.RequireOperatorToken(cfg.OperatorToken, log))
		patrol.NewHandler(svc, log).Register(r)
	})

	return router
}
