package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crudusers/users-service/handlers"
	"github.com/crudusers/users-service/internal/config"
	"github.com/crudusers/users-service/internal/database"
	"github.com/crudusers/users-service/internal/users"
	"github.com/crudusers/users-service/pkg/logger"
	"github.com/crudusers/users-service/pkg/metrics"
	"github.com/crudusers/users-service/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFile(os.Getenv("LOG_FILE"))
	defer logger.Sync()
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v strict=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Storage.Endpoint != "", cfg.Server.StrictErrors)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		defer func() { _ = rdb.Close() }()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var repo users.Repository
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts, time.Second)
	if err != nil {
		connErr := err
		logger.Errorf("%v; serving from the in-memory store", connErr)
		repo = users.NewMemoryRepository()
		checks["mongo"] = func(ctx context.Context) error { return connErr }
	} else {
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		logger.Infof("connected to MongoDB database=%s collection=%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		repo = users.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
		checks["mongo"] = mongoCheck(client)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := setupRouter(cfg, repo, rdb, checks)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
}

func mongoCheck(client *mongo.Client) handlers.Check {
	return func(ctx context.Context) error { return database.Ping(ctx, client) }
}

// setupRouter assembles middleware and routes. rdb may be nil.
func setupRouter(cfg *config.Config, repo users.Repository, rdb *redis.Client, checks map[string]handlers.Check) *gin.Engine {
	r := gin.New()

	// Lightweight CORS: common headers, and OPTIONS answered directly.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, "+middleware.RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(middleware.RequestID(), middleware.AccessLog(logger.L()), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handlers.NewHealthHandler(checks).Register(r)
	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	svc := users.NewService(repo)
	handlers.NewUserHandler(svc, cfg.Server.StrictErrors).Register(r.Group("/"))

	return r
}
