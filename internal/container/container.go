package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ravebox/discover/internal/category"
	"ravebox/discover/internal/client"
	"ravebox/discover/internal/config"
	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/queue"
	"ravebox/discover/internal/repository"
	"ravebox/discover/internal/server"
	"ravebox/discover/internal/service"
	"ravebox/discover/internal/state"
	"ravebox/discover/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	indexerSession = "indexer"
	snapshotTTL    = 24 * time.Hour
	shutdownGrace  = 10 * time.Second
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Categories []domain.Category
	Client     client.RaveboxClient
	Repository repository.ReviewListRepository
	Queue      queue.Queue
	Progress   state.ProgressManager
	Store      *store.Store

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	categories, err := category.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	container.Categories = categories

	raveboxClient, err := client.NewRaveboxClient(cfg.API)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	container.Client = raveboxClient

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	container.db = db

	if err := repository.EnsureSchema(ctx, db); err != nil {
		container.Close()
		return nil, err
	}
	container.Repository = repository.NewReviewListRepository(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue
	container.Progress = state.NewRedisProgressManager(rdb)

	snapshot := state.NewRedisSnapshot(rdb, indexerSession, snapshotTTL)
	opts := []store.Option{store.WithPersister(snapshot)}
	if saved, ok, err := snapshot.Load(ctx); err != nil {
		log.Warnf("⚠️ Ignoring saved state: %v", err)
	} else if ok {
		log.Infof("🔄 Restored state from last run (term %q)", saved.Discover.Term)
		opts = append(opts, store.WithState(saved))
	}
	container.Store = store.New(opts...)
	container.Store.Subscribe(func(s store.State) {
		log.Debugf("State: %d pending, %d discover lists for %q",
			len(s.Loading.Pending), len(s.Discover.Lists), s.Discover.Term)
	})

	container.Service = service.NewService(
		container.Repository,
		raveboxClient,
		redisQueue,
		container.Progress,
		container.Store,
		categories,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)

	return container, nil
}

// Run indexes all categories and processes the queued tasks until ctx is
// done. With once set, it returns after queueing and starts no workers.
func (c *Container) Run(ctx context.Context, once bool) error {
	if once {
		return c.Service.IndexAll(ctx, c.Config.API.MaxWorkers)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Service.IndexAll(ctx, c.Config.API.MaxWorkers)
	})

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.API.MaxWorkers)
	})

	return g.Wait()
}

// Serve runs the HTTP server until ctx is done
func (c *Container) Serve(ctx context.Context) error {
	handlers := &server.Handlers{
		Lists:    c.Repository,
		Ontology: c.Categories,
	}
	router := server.NewRouter(handlers, c.Config.Server.APIPath)
	httpServer := server.NewHTTPServer(c.Config.Server.Addr(), router)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Run(stop)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	httpServer.Close(shutdownCtx)

	return <-errCh
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.Store != nil {
		c.Store.Flush()
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
