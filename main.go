package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursehub/coursehub-api/handlers"
	"github.com/coursehub/coursehub-api/internal/auth"
	"github.com/coursehub/coursehub-api/internal/config"
	courses "github.com/coursehub/coursehub-api/internal/course/service"
	"github.com/coursehub/coursehub-api/internal/database"
	"github.com/coursehub/coursehub-api/internal/layout"
	"github.com/coursehub/coursehub-api/internal/mail"
	"github.com/coursehub/coursehub-api/internal/notification"
	"github.com/coursehub/coursehub-api/internal/order"
	"github.com/coursehub/coursehub-api/internal/sessions"
	"github.com/coursehub/coursehub-api/internal/tokens"
	"github.com/coursehub/coursehub-api/internal/users"
	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/coursehub/coursehub-api/pkg/metrics"
	"github.com/coursehub/coursehub-api/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: env=%s log=%s mongo=%v redis=%v kafka=%v", cfg.Server.Environment, logger.LevelString(), cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", len(cfg.Kafka.Brokers) > 0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(cfg.Server.AllowedOrigins))

	// Redis: session cache, refresh revocation and the shared rate limiter
	var redisClient *redis.Client
	var store sessions.Store
	if addr := cfg.Redis.Addr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to Redis (%s): %v", addr, err)
		}
		defer redisClient.Close()
		store = sessions.NewRedisStore(redisClient, "session:")
		logger.Infof("using Redis for session storage: %s", addr)
	} else {
		store = sessions.NewMemoryStore()
		logger.Warnf("REDIS_HOST not set: sessions are kept in process memory")
	}

	mongoClient, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.MongoDB.Database)

	userRepo := users.NewMongoUserRepository(db.Collection(database.UsersCollection))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("failed to create user indexes: %v", err)
	}
	layoutRepo := layout.NewMongoRepo(db.Collection(database.LayoutsCollection))
	if err := layoutRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("failed to create layout indexes: %v", err)
	}

	var mailer mail.Sender
	if len(cfg.Kafka.Brokers) > 0 {
		ks := mail.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.MailTopic)
		defer ks.Close()
		mailer = ks
		logger.Infof("activation mails published to kafka topic %s", cfg.Kafka.MailTopic)
	} else {
		if mailer, err = mail.LocalSender(cfg.Server.Environment); err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Warnf("KAFKA_BROKERS not set: activation codes are only logged at debug level")
	}

	issuer := tokens.NewIssuer(cfg)
	authSvc := auth.NewService(users.NewService(userRepo), issuer, store, mailer)
	authn := middleware.NewAuthenticator(issuer, authSvc)
	courseSvc := courses.NewMongoService(db.Collection(database.CoursesCollection))
	notificationSvc := notification.NewService(notification.NewMongoRepo(db.Collection(database.NotificationsCollection)))
	orderSvc := order.NewService(order.NewMongoRepo(db.Collection(database.OrdersCollection)), courseSvc, notificationSvc)
	contentSvc := courses.NewContent(courseSvc, orderSvc, notificationSvc)

	// credential endpoints are limited per client; this also bounds activation code guessing
	var limiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limiter = middleware.RedisRateLimitMiddleware(redisClient, "auth", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limiter = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	api := r.Group("/api/v1")
	handlers.NewAuthHandler(authSvc, tokens.NewCookiePolicy(cfg), authn).Register(api, limiter)
	handlers.NewCourseHandler(courseSvc, contentSvc).Register(api, authn)
	handlers.NewSiteHandler(layout.NewService(layoutRepo), notificationSvc, orderSvc).Register(api, authn)
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readiness(store, mongoClient))

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting coursehub api on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// readiness returns 200 only when the session cache and MongoDB answer.
func readiness(store sessions.Store, client *mongo.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps := map[string]bool{
			"sessions": store.Ping(ctx) == nil,
			"mongo":    client.Ping(ctx, nil) == nil,
		}
		status, state := http.StatusOK, "ready"
		for _, ok := range deps {
			if !ok {
				status, state = http.StatusServiceUnavailable, "not_ready"
			}
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	}
}
