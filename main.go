package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	bundlecandidaterepo "github.com/AudioList/deals-api/internal/repositories/bundlecandidate"
	couponrepo "github.com/AudioList/deals-api/internal/repositories/coupon"
	listingrepo "github.com/AudioList/deals-api/internal/repositories/listing"
	pricehistoryrepo "github.com/AudioList/deals-api/internal/repositories/pricehistory"
	productrepo "github.com/AudioList/deals-api/internal/repositories/product"
	retailerrepo "github.com/AudioList/deals-api/internal/repositories/retailer"

	"github.com/AudioList/deals-api/config"
	"github.com/AudioList/deals-api/pkg/cache"
	dealsvc "github.com/AudioList/deals-api/pkg/deals"
	"github.com/AudioList/deals-api/pkg/database"
	"github.com/AudioList/deals-api/pkg/events"
	"github.com/AudioList/deals-api/pkg/kafka"
	"github.com/AudioList/deals-api/pkg/logger"
	"github.com/AudioList/deals-api/pkg/middleware"
	"github.com/AudioList/deals-api/pkg/processor"
	dealroutes "github.com/AudioList/deals-api/pkg/routes/deals"
	"github.com/AudioList/deals-api/pkg/routes/health"
	retailerroutes "github.com/AudioList/deals-api/pkg/routes/retailers"
	"github.com/AudioList/deals-api/pkg/tracing"
	"github.com/AudioList/deals-api/pkg/tracing/exporters"
)

var version = "dev"

func fatal(log ectologger.Logger, err error, msg string) {
	log.WithError(err).Error(msg)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, flushLogs, err := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer flushLogs()

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := tracing.Init(ctx, cfg.AppName, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
		})
		if err != nil {
			fatal(log, err, "Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	db, err := database.Connect(database.ConnectionConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, log)
	if err != nil {
		fatal(log, err, "Failed to connect to database")
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db.DB.DB, &migratepg.Config{})
	if err != nil {
		fatal(log, err, "Failed to create migration driver")
	}
	migrations := database.NewMigrationService(log, database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		fatal(log, err, "Failed to run migrations")
	}

	var dealCache *cache.DealCache
	if cfg.RedisEnabled {
		dealCache, err = cache.New(cache.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.DealCacheTTL,
		}, log)
		if err != nil {
			fatal(log, err, "Failed to connect to redis")
		}
		defer dealCache.Close()
	}

	retailers := retailerrepo.New(db, log)
	products := productrepo.New(db, log)
	listings := listingrepo.New(db, log)
	history := pricehistoryrepo.New(db, log)
	couponRows := couponrepo.New(db, log)
	candidates := bundlecandidaterepo.New(db, log)

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, log)
	defer producer.Close()

	emitter := events.NewEmitter(producer, log)

	// nil interfaces stay nil when the cache is disabled
	var viewCache dealsvc.ViewCache
	var invalidator processor.Invalidator
	if dealCache != nil {
		viewCache = dealCache
		invalidator = dealCache
	}

	service := dealsvc.NewService(products, listings, history, candidates, couponRows, viewCache, cfg.StaleAfter, log)
	obsProcessor := processor.NewProcessor(log, listings, history, emitter, invalidator)

	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled {
		consumer = kafka.NewConsumer(cfg, log, obsProcessor.HandleMessage)
		if err := consumer.Start(ctx); err != nil {
			fatal(log, err, "Failed to start consumer")
		}
		defer func() {
			if err := consumer.Stop(); err != nil {
				log.WithError(err).Error("Failed to stop consumer")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(log))
	e.HTTPErrorHandler = middleware.Error(log)

	api := e.Group("/api/v1")
	dealroutes.NewHandler(service, history).Register(api)
	retailerroutes.NewHandler(retailers).Register(api)

	var redisCheck interface{ Ping(ctx context.Context) error }
	if dealCache != nil {
		redisCheck = dealCache
	}
	var consumerCheck interface{ Health() bool }
	if consumer != nil {
		consumerCheck = consumer
	}
	checker := health.NewChecker(db, redisCheck, consumerCheck, version)
	checker.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			fatal(log, err, "Server stopped unexpectedly")
		}
	}()
	checker.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shut down server cleanly")
	}
}
