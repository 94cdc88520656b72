package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-crud-service/cmd/api/infrastructure"
	"user-crud-service/internal/adapter/cache"
	"user-crud-service/internal/adapter/db/mongodb"
	"user-crud-service/internal/adapter/db/postgres"
	ginhandler "user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/config"
	"user-crud-service/internal/usecase/user"
	redisclient "user-crud-service/pkg/redis"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB      // set when DB_DRIVER=postgres
	Mongo         *mongo.Client // set when DB_DRIVER=mongo
	RedisClient   *redisclient.Client
	UserUC        user.Usecase
	GinHandler    *ginhandler.UserHandler
	HealthHandler *ginhandler.HealthHandler
	Metrics       *middleware.Metrics
}

// NewContainer creates and initializes all application dependencies. Every
// connection is established and verified before it returns.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}
	deps := map[string]ginhandler.Pinger{}

	var repo user.Repository
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := infrastructure.NewDatabase(cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		pgRepo := postgres.NewUserRepoPG(db, l)
		if err := pgRepo.Migrate(ctx); err != nil {
			c.closeQuietly()
			return nil, err
		}
		repo = pgRepo
		deps["postgres"] = pgRepo
	default:
		client, db, err := infrastructure.NewMongo(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		c.Mongo = client

		mongoRepo := mongodb.NewUserRepoMongo(db, l)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			c.closeQuietly()
			return nil, err
		}
		repo = mongoRepo
		deps["mongo"] = mongoRepo
	}

	if cfg.Redis.CacheEnabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			c.closeQuietly()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
		deps["redis"] = rdb

		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
	}

	c.UserUC = user.New(repo, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.HealthHandler = ginhandler.NewHealthHandler(cfg.Logger.ServiceName, cfg.Logger.ServiceVersion, deps)
	c.Metrics = middleware.NewMetrics()

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if c.Mongo != nil {
		if err := infrastructure.CloseMongo(ctx, c.Mongo); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Container) closeQuietly() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		c.Logger.Warn("failed to release resources after init error", zap.Error(err))
	}
}
