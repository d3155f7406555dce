package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/config"
	"darkstar-quiz-service/internal/infra/memory"
	pgarchive "darkstar-quiz-service/internal/infra/postgres"
	infraredis "darkstar-quiz-service/internal/infra/redis"
	transport "darkstar-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	livenessGrace := config.TTLDuration(cfg.Redis.TTL, time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	source, gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	hub := transport.NewHub()
	var sinks []app.ResultsSink
	var archive *pgarchive.ResultsArchive
	if pool != nil {
		archive = pgarchive.NewResultsArchive(pool)
		sinks = append(sinks, archive)
	}

	var store app.SessionRepository
	var results app.ResultsReader
	var resultsCache *infraredis.ResultsCache
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, livenessGrace)
		var loader infraredis.ResultsLoader
		if archive != nil {
			loader = archive
		}
		resultsCache = infraredis.NewResultsCache(redisClient, loader, resultsTTL(cfg))
		results = resultsCache
		// Reports reach the hub through pub/sub so every instance sees them.
		sinks = append(sinks, resultsCache)
	} else {
		store = memory.NewSessionStore()
		var loader memory.ResultsLoader
		if archive != nil {
			loader = archive
		}
		local := memory.NewResultsArchive(loader, resultsTTL(cfg))
		results = local
		sinks = append(sinks, local, hub)
	}

	engine := app.NewEngine(store, logger.Named("engine"), app.WithResultsSinks(sinks...))
	service := app.NewQuizService(gen, engine, logger.Named("service"),
		app.WithResultsReader(results),
		app.WithAskSource(source),
		app.WithLimits(limits(cfg.Quiz)))
	defer service.Shutdown()

	if resultsCache != nil {
		stopSub, err := resultsCache.Subscribe(ctx, hub.Deliver)
		if err != nil {
			return err
		}
		defer func() { _ = stopSub() }()
	}

	wsHandler := transport.NewWSHandler(service, hub, transport.Defaults{
		Questions:       cfg.Quiz.DefaultQuestions,
		DurationMinutes: cfg.Quiz.DefaultDuration,
	}, logger.Named("ws"))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(wsHandler, service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting quiz service", zap.String("addr", server.Addr), zap.String("source", source.ModelID()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
