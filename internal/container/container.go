package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/salestrack/messenger-service/config"
	"github.com/salestrack/messenger-service/internal/application"
	"github.com/salestrack/messenger-service/internal/domain/push"
	"github.com/salestrack/messenger-service/internal/domain/repository"
	"github.com/salestrack/messenger-service/internal/infrastructure/postgres"
	"github.com/salestrack/messenger-service/internal/infrastructure/throttle"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// Container holds the explicitly constructed service graph. Everything
// is built once in main and passed by reference; nothing in here is a
// package-level singleton.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	Users     repository.UserRepository
	Interests repository.ProductOfInterestRepository
	Directory *application.DirectoryService
	Notifier  *application.NotifierService
}

// Build wires repositories and services on top of the shared
// infrastructure handles. The push sender is injected so workers and
// tests can swap the transport.
func Build(cfg *config.Config, logger *logrus.Logger, pool *pgxpool.Pool, rdb *redis.Client, sender push.Sender) *Container {
	users := postgres.NewUserRepository(pool)
	interests := postgres.NewProductOfInterestRepository(pool)

	directory := application.NewDirectoryService(
		users,
		interests,
		throttle.NewRedis(rdb, cfg.LoginThrottleWindow),
		logger,
		cfg.AdminEmail,
		cfg.AdminPassword,
	)
	directory.LoginWriteInterval = cfg.LoginThrottleWindow

	return &Container{
		Config:    cfg,
		Logger:    logger,
		PGPool:    pool,
		Redis:     rdb,
		JWT:       helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Users:     users,
		Interests: interests,
		Directory: directory,
		Notifier:  application.NewNotifierService(users, interests, sender, logger),
	}
}
