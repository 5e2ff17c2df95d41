package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/client"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/redis"
	grpcserver "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/grpc"
	httphandler "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/db"
	"github.com/wyfcoding/optionpricing/pkg/idgen"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/middleware"
	"github.com/wyfcoding/optionpricing/pkg/mq"
	"github.com/wyfcoding/optionpricing/pkg/ratelimit"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
)

const BootstrapName = "pricing"

func main() {
	configPath := flag.String("config", config.GetEnv("APP_CONFIG", "configs/pricing/config.toml"), "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{
		Service:    cfg.ServiceName,
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal(ctx, "service exited with error", "service", BootstrapName, "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Info(ctx, "initializing service dependencies...", "service", BootstrapName, "environment", cfg.Environment)

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if err := mysql.AutoMigrate(database.DB); err != nil {
		return fmt.Errorf("failed to migrate pricing results: %w", err)
	}
	if err := messaging.AutoMigrate(database.DB); err != nil {
		return fmt.Errorf("failed to migrate outbox: %w", err)
	}

	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return err
	}
	defer redisCache.Close()

	producer, err := mq.NewProducer(mq.KafkaConfig{Brokers: cfg.Kafka.Brokers})
	if err != nil {
		return err
	}
	defer producer.Close()

	m := metrics.New(BootstrapName)
	if err := m.Register(nil); err != nil {
		return err
	}

	ids, err := idgen.NewGenerator(cfg.Pricing.NodeID)
	if err != nil {
		return err
	}

	pc := cfg.Pricing
	engine := client.NewExoticEngine(pc.ExoticEngineURL, time.Duration(pc.ExoticEngineTimeout)*time.Second)
	if engine == nil {
		logger.Warn(ctx, "exotic pricing engine not configured; barrier and asian options are unavailable")
	}
	factory, err := application.NewInstrumentFactory(pc.DefaultModel, pc.BinomialSteps, engine)
	if err != nil {
		return err
	}

	repo := redisrepo.NewCachedPricingRepository(
		mysql.NewPricingRepository(database.DB),
		redisCache,
		time.Duration(pc.ResultCacheTTL)*time.Second,
	)
	outboxMgr := outbox.NewManager(database.DB, logger.Get())
	publisher := messaging.NewOutboxEventPublisher(outboxMgr)

	cmdService := application.NewPricingCommandService(repo, publisher, factory, m, ids, pc.MaxParallelism)
	queryService := application.NewPricingQueryService(repo)
	riskService := application.NewRiskService(factory, publisher, m, pc.VaRScenarios, pc.VaRHorizonDays, pc.MaxParallelism)

	relay := messaging.NewOutboxRelay(
		outboxMgr,
		messaging.NewKafkaPusher(producer, cfg.Kafka.Topic, m),
		pc.OutboxBatchSize,
		time.Duration(pc.OutboxRelayInterval)*time.Second,
	)
	relay.Start()
	defer relay.Stop()

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engineHTTP := gin.New()
	engineHTTP.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinMetricsMiddleware(m),
		middleware.RateLimitMiddleware(ratelimit.NewRedisRateLimiter(redisCache.GetClient()), cfg.RateLimit),
	)
	httphandler.NewPricingHandler(cmdService, queryService, riskService).RegisterRoutes(engineHTTP)
	engineHTTP.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   BootstrapName,
			"timestamp": time.Now().Unix(),
		})
	})
	if cfg.Metrics.Enabled {
		engineHTTP.GET(cfg.Metrics.Path, metrics.Handler())
	}
	logger.Info(ctx, "HTTP routes registered", "service", BootstrapName)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engineHTTP,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 2)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC: %w", err)
		}
		grpcSrv = grpcserver.NewServer()
		go func() {
			if err := grpcSrv.Serve(ctx, lis); err != nil {
				serveErr <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error(ctx, "server failed", "error", err)
		if grpcSrv != nil {
			grpcSrv.Stop()
		}
		_ = srv.Close()
		return err
	}

	logger.Info(context.Background(), "shutting down...", "service", BootstrapName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP server shutdown failed", "error", err)
	}
	return nil
}
