package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/electroshop-orders/internal/config"
	kafkax "github.com/ariefcatur/electroshop-orders/internal/kafka"
	"github.com/ariefcatur/electroshop-orders/internal/logging"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/ariefcatur/electroshop-orders/internal/receipts"
	"github.com/ariefcatur/electroshop-orders/internal/redisx"
	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// dedup keys are namespaced by this name: dedup:receipts:{event_id}
const serviceName = "receipts"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.MustNew(cfg.ServiceName+"-"+serviceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	proj := &receipts.Projector{
		Cache:       receipts.NewCache(rdb),
		Redis:       rdb,
		ServiceName: serviceName,
	}
	handle := func(ctx context.Context, m kafkago.Message) error {
		ctx = logging.WithLogger(ctx, logger.With(zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset)))
		return proj.HandleOrderFulfilled(ctx, m)
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ReceiptsGroup, orders.TopicOrderFulfilled, cfg.ReceiptsWorkers, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("receipts_consumer_started",
			zap.String("group", cfg.ReceiptsGroup),
			zap.String("topic", orders.TopicOrderFulfilled),
			zap.Int("workers", cfg.ReceiptsWorkers),
		)
		if err := cons.Start(ctx, handle); err != nil {
			logger.Error("consumer_exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting_down")
	cancel()
	<-done
}
