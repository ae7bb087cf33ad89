package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/jewelry-store/internal/adapter/events"
	"github.com/rl1809/jewelry-store/internal/adapter/handler"
	"github.com/rl1809/jewelry-store/internal/adapter/storage"
	"github.com/rl1809/jewelry-store/internal/config"
	"github.com/rl1809/jewelry-store/internal/core/service"
	"github.com/rl1809/jewelry-store/internal/metrics"
	"github.com/rl1809/jewelry-store/internal/port"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the backing store
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	var store port.EntityStore = storage.Open(connectCtx, storage.Options{
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		MySQLDSN:      cfg.MySQLDSN,
		DataDir:       cfg.DataDir,
	}, logger)
	cancel()

	m := metrics.New()
	m.SetStoreLive(store.Live())

	// Optional read cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			rdb.Close()
			rdb = nil
		} else {
			logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
			store = storage.NewCachedStore(store, storage.NewRedisAdapter(rdb, cfg.CacheTTL), logger)
		}
	}

	// Order events
	var publisher port.EventPublisher = events.NoopPublisher{}
	var kafkaPublisher *events.KafkaPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic, logger)
		publisher = kafkaPublisher
		logger.Info("publishing order events",
			zap.String("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.OrderEventsTopic))
	}

	storefront := service.NewStorefront(store, publisher, m, logger)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.NewHTTPHandler(storefront, logger), m, logger, cfg.CORSOrigin)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	grpcHandler := handler.NewGRPCHandler(storefront, logger)
	grpcHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("port", cfg.Port),
			zap.String("backend", store.Backend()),
			zap.Bool("live", store.Live()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
		return grpcServer.Serve(lis)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		grpcHandler.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	serveErr := g.Wait()
	if serveErr != nil {
		logger.Error("server error", zap.Error(serveErr))
	}

	// Close connections
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		logger.Error("failed to close store", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("failed to close kafka publisher", zap.Error(err))
		}
	}
	logger.Info("connections closed")

	if serveErr != nil {
		logger.Sync()
		os.Exit(1)
	}
}
