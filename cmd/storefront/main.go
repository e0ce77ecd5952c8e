package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	carthttp "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/poller"
	"github.com/fjod/go_cart/storefront/internal/remote"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/fjod/go_cart/storefront/pkg/config"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/fjod/go_cart/storefront/pkg/shutdown"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	if err := run(cfg, l); err != nil {
		l.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg config.Config, l *zap.Logger) error {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	strategy, err := store.ParseSyncStrategy(cfg.SyncStrategy)
	if err != nil {
		return err
	}
	bulkMode, err := store.ParseBulkMode(cfg.BulkMode)
	if err != nil {
		return err
	}

	products, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer products.Close()
	if err := products.RunMigrations(cfg.CatalogMigrations); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	l.Info("catalog ready", zap.String("path", cfg.CatalogDBPath))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		l.Warn("redis unreachable, snapshot reads will go to the repository", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	repo, closeRepo, err := snapshotRepository(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer closeRepo()

	snapshots := service.NewSnapshotService(repo, cache.NewRedisCache(redisClient, cfg.CacheTTL), l)

	var client *remote.Client
	if cfg.RemoteBaseURL != "" {
		client = remote.New(remote.Options{
			BaseURL: cfg.RemoteBaseURL,
			Token:   cfg.RemoteToken,
			Timeout: cfg.RemoteTimeout,
			Logger:  l,
		})
		l.Info("remote sync enabled", zap.String("base_url", cfg.RemoteBaseURL), zap.String("strategy", string(strategy)))
	}

	registry := store.NewRegistry(func(sessionID string) []store.Option {
		opts := []store.Option{
			store.WithPersister(snapshots.ForSession(sessionID)),
			store.WithCatalog(products),
			store.WithBulkMode(bulkMode),
			store.WithLogger(l),
		}
		if client != nil {
			opts = append(opts, store.WithRemote(client.ForUser(sessionID), strategy))
		}
		return opts
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      carthttp.NewRouter(carthttp.RouterConfig{Sessions: registry, Catalog: products}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return registry.Run(gctx, cfg.SessionIdleTTL, l)
	})

	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(poller.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		}, registry, l)
		g.Go(func() error {
			defer p.Close()
			l.Info("checkout poller started", zap.String("topic", cfg.KafkaTopic))
			return p.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	l.Info("storefront exited")
	return nil
}

// snapshotRepository connects to MongoDB when configured and otherwise keeps
// snapshots in process memory.
func snapshotRepository(ctx context.Context, cfg config.Config, l *zap.Logger) (repository.SnapshotRepository, func(), error) {
	if cfg.MongoURI == "" {
		repo := repository.NewMemoryRepository(repository.SnapshotTTL)
		l.Warn("MONGO_URI not set, snapshots are kept in memory")
		return repo, func() { _ = repo.Close() }, nil
	}

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}
	repo := repository.NewMongoRepository(db)
	if err := repo.CreateIndexes(ctx); err != nil {
		l.Warn("failed to create snapshot indexes", zap.Error(err))
	}
	l.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))

	return repo, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			l.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}, nil
}
