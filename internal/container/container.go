package container

import (
	"context"
	"fmt"
	"time"

	"pokedex/catalog/internal/client"
	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/export"
	"pokedex/catalog/internal/proxy"
	"pokedex/catalog/internal/queue"
	"pokedex/catalog/internal/repository"
	"pokedex/catalog/internal/service"
	"pokedex/catalog/internal/state"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.PokeAPIClient
	Repository   repository.SpeciesRepository
	Queue        queue.Queue
	StateManager state.StateManager
	Exporter     service.SnapshotExporter

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a container with the PokeAPI client only. Storage and export
// are connected on demand by the commands that need them.
func New(ctx context.Context, cfg *config.Config) *Container {
	proxySupplier := proxy.NewProxySupplier(ctx, cfg.PokeAPI.Proxies, cfg.PokeAPI.BaseURL)

	return &Container{
		Config: cfg,
		Client: client.NewPokeAPIClient(cfg.PokeAPI, proxySupplier),
	}
}

// ConnectStorage connects Postgres and Redis concurrently and prepares the
// species table and stream
func (c *Container) ConnectStorage(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		db, err := pgxpool.New(gctx, c.Config.Database.ConnString())
		if err != nil {
			return fmt.Errorf("failed to create database pool: %w", err)
		}
		c.db = db

		if err := db.Ping(gctx); err != nil {
			return fmt.Errorf("failed to connect to Postgres: %w", err)
		}

		repo := repository.NewSpeciesRepository(db)
		if err := repo.EnsureSchema(gctx); err != nil {
			return err
		}
		c.Repository = repo

		log.Info("✅ Connected to Postgres successfully")
		return nil
	})

	g.Go(func() error {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.Database,
		})
		c.redis = rdb

		if err := rdb.Ping(gctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}

		redisQueue, err := queue.NewRedisQueue(gctx, rdb, c.Config.Redis)
		if err != nil {
			return err
		}
		c.Queue = redisQueue
		c.StateManager = state.NewRedisStateManager(rdb)

		log.Info("✅ Connected to Redis successfully")
		return nil
	})

	return g.Wait()
}

// ConnectExport loads the AWS SDK configuration for the S3 exporter
func (c *Container) ConnectExport(ctx context.Context) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Config.Export.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	c.Exporter = export.NewExporter(export.NewS3Client(awsCfg), c.Config.Export.Bucket, c.Config.Export.Prefix)
	return nil
}

// Service builds a service from whatever is connected at the moment
func (c *Container) Service() *service.Service {
	return service.NewService(
		c.Client,
		c.Repository,
		c.Queue,
		c.StateManager,
		c.Exporter,
		service.Options{
			Limit:       c.Config.PokeAPI.Limit,
			Workers:     c.Config.PokeAPI.MaxWorkers,
			GroupName:   c.Config.Redis.ConsumerGroup,
			MinIdleTime: time.Duration(c.Config.Redis.MinIdleTime) * time.Second,
		},
	)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis: %w", err)
		}
	}
	return nil
}
