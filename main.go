package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"storefront/cache"
	"storefront/config"
	"storefront/consumers"
	"storefront/controllers"
	"storefront/database"
	"storefront/logging"
	"storefront/rabbitmq"
	"storefront/repository"
	"storefront/routes"
	"storefront/services"
	"storefront/utils"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database initialization failed", zap.Error(err))
	}
	defer database.CloseDB(db)
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Seed {
		if err := database.Seed(db, cfg.Auth.AdminPassword, logger); err != nil {
			logger.Fatal("seed failed", zap.Error(err))
		}
	}

	orderOpts := []services.OrderOption{services.WithLogger(logger.Named("orders"))}

	// RabbitMQ is optional; without it order events are dropped
	if cfg.RabbitMQ.URL != "" {
		rmq, err := rabbitmq.NewRabbitMQ(cfg, logger)
		if err != nil {
			logger.Fatal("rabbitmq initialization failed", zap.Error(err))
		}
		defer rmq.Close()

		if err := rmq.SetupQueues(); err != nil {
			logger.Fatal("failed to setup rabbitmq queues", zap.Error(err))
		}
		if err := consumers.StartOrderConsumer(ctx, rmq.Channel, cfg, logger.Named("audit")); err != nil {
			logger.Fatal("failed to start order consumer", zap.Error(err))
		}
		orderOpts = append(orderOpts, services.WithEvents(rmq))
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.Fatal("redis initialization failed", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		orderOpts = append(orderOpts, services.WithIdempotency(cache.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)))
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Fatal("create upload dir", zap.Error(err))
	}

	tokens := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.CustomerTTL, cfg.Auth.AdminTTL)
	customerRepo := repository.NewCustomerRepository(db)

	orderSvc := services.NewOrderService(
		repository.NewOrderRepository(db),
		customerRepo,
		services.OrderOptions{
			ListFailureMode:  cfg.Orders.ListFailureMode,
			AllowStatusJumps: cfg.Orders.AllowStatusJumps,
		},
		orderOpts...,
	)
	accountSvc := services.NewAccountService(customerRepo, repository.NewAdminRepository(db), tokens, logger.Named("accounts"))
	catalogSvc := services.NewCatalogService(repository.NewProductRepository(db), cfg.Uploads.Dir, logger.Named("catalog"))

	r := routes.Setup(routes.Deps{
		Orders:         controllers.NewOrderController(orderSvc),
		Customers:      controllers.NewCustomerController(accountSvc),
		Admins:         controllers.NewAdminController(accountSvc),
		Products:       controllers.NewProductController(catalogSvc, cfg.Uploads.Dir, cfg.Uploads.MaxBytes),
		Tokens:         tokens,
		Logger:         logger.Named("http"),
		UploadDir:      cfg.Uploads.Dir,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
