// Package app assembles the service from its parts: config in, a runnable
// App out. All construction happens here so main stays a thin shell and tests
// can wire the same components with fakes instead.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/PhiQuangHuy/order-service/internal/api/http"
	"github.com/PhiQuangHuy/order-service/internal/config"
	kafkaevent "github.com/PhiQuangHuy/order-service/internal/event/kafka"
	"github.com/PhiQuangHuy/order-service/internal/event/outbox"
	"github.com/PhiQuangHuy/order-service/internal/metrics"
	"github.com/PhiQuangHuy/order-service/internal/repository"
	memoryrepo "github.com/PhiQuangHuy/order-service/internal/repository/memory"
	postgresrepo "github.com/PhiQuangHuy/order-service/internal/repository/postgres"
	redisrepo "github.com/PhiQuangHuy/order-service/internal/repository/redis"
	"github.com/PhiQuangHuy/order-service/internal/service"
	"github.com/PhiQuangHuy/order-service/platform/logging"
	"github.com/PhiQuangHuy/order-service/platform/shutdown"
)

// App is the fully wired service.
type App struct {
	logger     *zap.Logger
	cfg        config.Config
	server     *http.Server
	consumer   *kafkaevent.PaymentConsumer
	dispatcher *kafkaevent.OutboxDispatcher
	shutdown   *shutdown.Manager
}

// Build wires the service per cfg. With POSTGRES_DSN set, state lives in
// Postgres and events go through the outbox; otherwise everything is
// in-memory with direct publishing. With REDIS_ADDR set, the idempotency
// ledger survives restarts.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{
		ServiceName: "order-service",
		Env:         cfg.AppEnv,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		AddCaller:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	sd := shutdown.New(cfg.ShutdownTimeout, logger)
	eventMetrics := metrics.NewEventMetrics()

	var (
		orderRepo   repository.OrderRepository
		productRepo repository.ProductRepository
		outboxRepo  repository.OutboxRepository
		readiness   func() bool
	)

	if cfg.PostgresDSN != "" {
		if err := postgresrepo.Migrate(cfg.PostgresDSN); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		sd.Add("postgres pool", shutdown.ClosePool(pool))

		orderRepo = postgresrepo.NewOrderRepository(pool)
		productRepo = postgresrepo.NewProductRepository(pool)
		outboxRepo = postgresrepo.NewOutboxRepository(pool)
		readiness = func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		}

		logger.Info("using postgres storage with outbox publishing")
	} else {
		orderRepo = memoryrepo.NewOrderRepository()
		productRepo = memoryrepo.NewProductRepository()
		readiness = func() bool { return true }

		logger.Info("using in-memory storage with direct publishing")
	}

	var processed service.ProcessedEventsStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		sd.Add("redis client", shutdown.CloseFunc(client))
		processed = redisrepo.NewProcessedEventsStore(client, logger)
	} else {
		processed = service.NewMemoryProcessedEventsStore()
	}

	var (
		publisher  service.EventPublisher
		dispatcher *kafkaevent.OutboxDispatcher
	)
	if outboxRepo != nil {
		publisher = outbox.NewPublisher(logger, outboxRepo)
		dispatcher = kafkaevent.NewOutboxDispatcher(
			logger,
			outboxRepo,
			cfg.KafkaBrokers,
			eventMetrics,
			cfg.OutboxBatchSize,
			cfg.OutboxInterval,
			cfg.OutboxMaxRetries,
			cfg.OutboxBackoff,
		)
		sd.Add("outbox dispatcher", shutdown.CloseFunc(dispatcher))
	} else {
		direct := kafkaevent.NewPublisher(logger, cfg.KafkaBrokers, eventMetrics)
		sd.Add("kafka publisher", shutdown.CloseFunc(direct))
		publisher = direct
	}

	orderService := service.NewOrderService(logger, orderRepo, publisher, processed, cfg.IdempotencyTTL)
	productService := service.NewProductService(logger, productRepo)

	var consumer *kafkaevent.PaymentConsumer
	if cfg.ConsumerEnabled {
		dlq := kafkaevent.NewDLQPublisher(logger, cfg.KafkaBrokers, cfg.DLQTopic)
		sd.Add("dlq publisher", shutdown.CloseFunc(dlq))

		consumer = kafkaevent.NewPaymentConsumer(
			logger,
			cfg.KafkaBrokers,
			cfg.KafkaGroupID,
			cfg.PaymentTopic,
			orderService,
			dlq,
			eventMetrics,
		)
		sd.Add("payment consumer", shutdown.CloseFunc(consumer))
	}

	router := httpapi.NewRouter(
		httpapi.NewOrderHandler(logger, orderService),
		httpapi.NewProductHandler(logger, productService),
		readiness,
		metrics.Handler(),
	)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	sd.Add("http server", shutdown.ShutdownHTTPServer(server))

	return &App{
		logger:     logger,
		cfg:        cfg,
		server:     server,
		consumer:   consumer,
		dispatcher: dispatcher,
		shutdown:   sd,
	}, nil
}

// Run starts the HTTP server and the background loops, then blocks until a
// shutdown signal arrives and the shutdown manager has drained everything.
func (a *App) Run(ctx context.Context) error {
	defer logging.Sync(a.logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.shutdown.Add("background loops", func(context.Context) error {
		cancel()
		return nil
	})

	if a.dispatcher != nil {
		go func() {
			if err := a.dispatcher.Start(runCtx); err != nil {
				a.logger.Error("outbox dispatcher stopped", zap.Error(err))
			}
		}()
	}

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(runCtx); err != nil {
				a.logger.Error("payment consumer stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		a.logger.Info("starting http server", zap.String("addr", a.cfg.HTTPAddr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	a.shutdown.Wait()
	return nil
}
