package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/config"
	"github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	"github.com/ariefcatur/electroshop-orders/internal/httpx"
	kafkax "github.com/ariefcatur/electroshop-orders/internal/kafka"
	"github.com/ariefcatur/electroshop-orders/internal/logging"
	"github.com/ariefcatur/electroshop-orders/internal/memory"
	"github.com/ariefcatur/electroshop-orders/internal/metrics"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/ariefcatur/electroshop-orders/internal/postgres"
	"github.com/ariefcatur/electroshop-orders/internal/receipts"
	"github.com/ariefcatur/electroshop-orders/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type backend interface {
	fulfillment.Store
	orders.ReadModel
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.MustNew(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Store: Postgres, or the seeded in-memory store for local runs
	var store backend
	switch cfg.Store {
	case config.StoreMemory:
		ms := memory.NewStore()
		memory.Seed(ms)
		store = ms
		logger.Info("store_memory_seeded")
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, 10)
		if err != nil {
			logger.Fatal("db_connect_failed", zap.Error(err))
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				logger.Fatal("db_migrate_failed", zap.Error(err))
			}
			logger.Info("db_migrated")
		}
		store = &postgres.Store{DB: db}
	}

	// Redis: receipt cache. Lookups fall back to the store while it is down.
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis_unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderFulfilled, 1024, logger)
	prod.Start()

	svc := &fulfillment.Service{
		Store:     store,
		Cards:     card.NewValidator(card.NewSimulatedAuthorizer(cfg.CardAuthDelay)),
		Publisher: &kafkax.FulfilledPublisher{Producer: prod, ServiceName: cfg.ServiceName},
		Metrics:   m,
	}

	router := httpx.NewRouter(logger, m, 3*cfg.RequestTimeout)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	oh := &httpx.OrdersHandler{
		Fulfiller: svc,
		Receipts:  &receipts.Lookup{Cache: receipts.NewCache(rdb), Store: store},
		Products:  store,
		Timeout:   cfg.RequestTimeout,
	}
	oh.Register(router)

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http_listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http_listen_failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting_down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("http_shutdown_failed", zap.Error(err))
	}
	// no request can publish any more: flush what is queued
	prod.Close()
	prod.WaitClosed()
}
