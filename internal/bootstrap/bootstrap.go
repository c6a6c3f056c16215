package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/fathima-sithara/todo-service/internal/config"
	"github.com/fathima-sithara/todo-service/internal/database"
	"github.com/fathima-sithara/todo-service/internal/events"
	"github.com/fathima-sithara/todo-service/internal/handlers"
	"github.com/fathima-sithara/todo-service/internal/metrics"
	"github.com/fathima-sithara/todo-service/internal/middleware"
	"github.com/fathima-sithara/todo-service/internal/repository"
	"github.com/fathima-sithara/todo-service/internal/routes"
	"github.com/fathima-sithara/todo-service/internal/server"
	"github.com/fathima-sithara/todo-service/internal/services"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type AppContext struct {
	Config    *config.Config
	Logger    *zap.Logger
	Sugar     *zap.SugaredLogger
	Mongo     *mongo.Client
	Redis     *redis.Client
	Publisher events.Publisher
	App       *fiber.App
}

type CleanupFn func(context.Context)

func Init() (*AppContext, CleanupFn, error) {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(cfg.App.Env)
	sugar := logger.Sugar()

	app := &AppContext{Config: cfg, Logger: logger, Sugar: sugar}
	sugar.Infof("Starting %s in %s environment", cfg.App.Name, cfg.App.Env)

	if cfg.JWT.Secret == "" {
		secret, err := utils.RandomSecret()
		if err != nil {
			return nil, nil, err
		}
		cfg.JWT.Secret = secret
		sugar.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		return nil, nil, err
	}
	app.Mongo = mongoClient

	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.UserCollection)
	todoRepo := repository.NewMongoTodoRepo(db, cfg.Mongo.TodoCollection)

	idxCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := userRepo.EnsureIndexes(idxCtx); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, nil, err
	}
	if err := todoRepo.EnsureIndexes(idxCtx); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, nil, err
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())

	limiter, rdb := newLimiter(bgCtx, cfg, sugar)
	app.Redis = rdb

	app.Publisher = newPublisher(cfg, logger)

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	jwtMgr := utils.NewJWTManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.AccessTTL())
	validator := utils.NewValidator()

	authSvc := services.NewAuthService(userRepo, validator, jwtMgr, cfg.Security.PasswordHashCost, app.Publisher, m, logger)
	userSvc := services.NewUserService(userRepo, validator, cfg.Security.PasswordHashCost, logger)
	todoSvc := services.NewTodoService(todoRepo, userRepo, validator, cfg.Security.EnforceOwnership, app.Publisher, m, logger)
	h := handlers.NewHandler(authSvc, userSvc, todoSvc, logger)

	app.App = server.New(cfg, h, server.Deps{
		Routes: routes.Options{
			JWT:                  jwtMgr,
			Limiter:              limiter,
			ProtectAllTodoRoutes: cfg.Security.ProtectAllTodoRoutes,
			EnforceOwnership:     cfg.Security.EnforceOwnership,
			Logger:               logger,
		},
		Health:   database.NewMongoPinger(mongoClient),
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})

	return app, func(ctx context.Context) {
		stopBackground()

		if cerr := app.Publisher.Close(); cerr != nil {
			sugar.Errorf("Event publisher close error: %v", cerr)
		}

		if cerr := mongoClient.Disconnect(ctx); cerr != nil {
			sugar.Errorf("MongoDB disconnect error: %v", cerr)
		}

		if rdb != nil {
			if cerr := rdb.Close(); cerr != nil {
				sugar.Errorf("Redis client close error: %v", cerr)
			}
		}

		if cerr := logger.Sync(); cerr != nil {
			log.Printf("Logger sync error: %v", cerr)
		}
	}, nil
}

// newLimiter prefers a Redis-backed limiter so that every instance shares
// one budget. Without Redis it falls back to an in-process limiter.
func newLimiter(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (middleware.Limiter, *redis.Client) {
	if !cfg.RateLimit.Enabled {
		sugar.Info("Rate limiting disabled")
		return nil, nil
	}

	if cfg.Redis.Addr != "" {
		rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err == nil {
			limit := cfg.RateLimit.PerMinute + cfg.RateLimit.Burst
			return middleware.NewRedisLimiter(rdb, cfg.Redis.Prefix, limit, time.Minute), rdb
		}
		sugar.Warnf("Redis unavailable, using in-memory rate limiter: %v", err)
	}

	ml := middleware.NewMemoryLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	go ml.Cleanup(ctx, time.Minute)
	return ml, nil
}

// newPublisher picks Kafka, then NATS, then a no-op sink. Broker
// availability never blocks startup.
func newPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	var next events.Publisher
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		next = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	case cfg.NATS.URL != "":
		np, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Warn("nats unavailable, events disabled", zap.Error(err))
			return events.Nop{}
		}
		next = np
		logger.Info("publishing events to nats", zap.String("subject", cfg.NATS.Subject))
	default:
		logger.Info("no event broker configured, events disabled")
		return events.Nop{}
	}
	return events.NewResilient(next, events.DefaultResilientOptions(), logger)
}
