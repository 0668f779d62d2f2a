package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Call/internal/adapters/calllog"
	router "github.com/dkeye/Call/internal/adapters/http"
	"github.com/dkeye/Call/internal/adapters/identity"
	wsignal "github.com/dkeye/Call/internal/adapters/signal"
	"github.com/dkeye/Call/internal/app"
	"github.com/dkeye/Call/internal/app/orch"
	"github.com/dkeye/Call/internal/config"
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		defer rdb.Close()
	}

	var dir identity.Directory
	if db != nil {
		dir = identity.NewPostgresDirectory(db)
	}
	ids := identity.NewJWTGateway(cfg.JWTSecret, dir)

	sinks := calllog.Multi{}
	for _, name := range cfg.CallLogSinks {
		switch name {
		case "log":
			sinks = append(sinks, calllog.LogSink{})
		case "postgres":
			sinks = append(sinks, calllog.NewPostgres(db))
		case "redis":
			sinks = append(sinks, calllog.NewRedisStream(rdb, cfg.RedisPrefix))
		}
	}
	var sink core.CallLog
	if len(sinks) > 0 {
		sink = sinks
	}

	policy, err := app.NewPolicy(cfg.Backpressure)
	if err != nil {
		return err
	}

	m := metrics.New("call")
	o := &orch.Orchestrator{
		Registry:    app.NewRegistry(),
		Sessions:    app.NewSessionTable(),
		Timeouts:    app.NewScheduler(),
		Policy:      policy,
		CallLog:     sink,
		Identity:    ids,
		Metrics:     m,
		RingTimeout: cfg.RingTimeout,
	}

	ctrl := wsignal.NewSignalWSController(o, ids, m, wsignal.Options{
		ICEServers:        cfg.PeerICEServers(),
		SendQueue:         cfg.SendQueue,
		ReadLimit:         cfg.ReadLimit,
		PingPeriod:        cfg.PingPeriod,
		AuthTimeout:       cfg.AuthTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	r := router.SetupRouter(ctx, cfg, ctrl, m)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Call server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		err := srv.Shutdown(shutdownCtx)
		o.Timeouts.Stop()
		o.Wait()
		return err
	})
	return g.Wait()
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info().Str("module", "main").Msg("database connected")
	return db, nil
}
