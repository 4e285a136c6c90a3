package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Raj-kansagra/InstaFood/internal/cache"
	"github.com/Raj-kansagra/InstaFood/internal/config"
	"github.com/Raj-kansagra/InstaFood/internal/events"
	h "github.com/Raj-kansagra/InstaFood/internal/http"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"github.com/Raj-kansagra/InstaFood/internal/service"
	"github.com/Raj-kansagra/InstaFood/internal/telemetry"
	"github.com/Raj-kansagra/InstaFood/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type orderPublisher interface {
	service.OrderEventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Telemetry.ServiceName, cfg.Log.Format, cfg.Log.Level)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Env, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		fatal(log, "failed to set up tracing", err)
	}

	// Set up MongoDB connection
	if cfg.Mongo.RunMigrations {
		if err := repository.RunMigrations(cfg.Mongo.URI, cfg.Mongo.Database); err != nil {
			fatal(log, "failed to run migrations", err)
		}
		log.Info("migrations applied")
	}
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		fatal(log, "failed to connect to MongoDB", err)
	}
	log.Info("connected to MongoDB", slog.String("database", cfg.Mongo.Database))

	products := repository.NewProductRepository(mongoDB)
	users := repository.NewUserRepository(mongoDB)
	orders := repository.NewOrderRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fatal(log, "redis connection failed", err)
	}
	log.Info("redis ping succeeded", slog.String("addr", cfg.Redis.Addr))
	cartCache := cache.NewRedisCache(redisClient, cfg.Redis.CartTTL)

	var publisher orderPublisher = events.NoopPublisher{}
	var clearer *events.CartClearer
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		clearer = events.NewCartClearer(users, cartCache, log, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	} else {
		log.Warn("kafka brokers not configured, order events are disabled")
	}

	authService := service.NewAuthService(users, cfg.Auth, log)
	handlers := h.Handlers{
		Auth:      h.NewAuthHandler(authService, cfg.HTTP.RequestTimeout),
		Products:  h.NewProductHandler(service.NewProductService(products), cfg.HTTP.RequestTimeout),
		Cart:      h.NewCartHandler(service.NewCartService(users, products, cartCache, log), cfg.HTTP.RequestTimeout),
		Favorites: h.NewFavoritesHandler(service.NewFavoritesService(users, products), cfg.HTTP.RequestTimeout),
		Orders: h.NewOrdersHandler(
			service.NewOrderService(orders, users, products, cartCache, publisher, log),
			cfg.HTTP.RequestTimeout),
	}

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.HTTP.RequestTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		ServiceName:        cfg.Telemetry.ServiceName,
	}, handlers, authService, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if clearer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clearer.Run(consumerCtx)
		}()
	}

	go func() {
		log.Info("server starting", slog.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}

	stopConsumer()
	wg.Wait()
	if clearer != nil {
		clearer.Close()
	}
	if err := publisher.Close(); err != nil {
		log.Error("failed to close publisher", slog.Any("error", err))
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Error("failed to disconnect MongoDB", slog.Any("error", err))
	}
	if err := redisClient.Close(); err != nil {
		log.Error("failed to close redis", slog.Any("error", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("failed to flush traces", slog.Any("error", err))
	}

	log.Info("server exited")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
