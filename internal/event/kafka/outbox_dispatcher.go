package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/metrics"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// OutboxDispatcher drains pending outbox events to Kafka. Retry is bounded
// per pass; an event that keeps failing stays pending with its last error
// recorded and is picked up again on the next tick.
type OutboxDispatcher struct {
	logger     *zap.Logger
	outbox     repository.OutboxRepository
	writer     *kafka.Writer
	metrics    *metrics.EventMetrics
	batchSize  int
	interval   time.Duration
	maxRetries int
	backoff    time.Duration
}

// NewOutboxDispatcher creates a dispatcher draining outbox into Kafka.
func NewOutboxDispatcher(
	logger *zap.Logger,
	outbox repository.OutboxRepository,
	brokers []string,
	m *metrics.EventMetrics,
	batchSize int,
	interval time.Duration,
	maxRetries int,
	backoff time.Duration,
) *OutboxDispatcher {
	if batchSize <= 0 {
		batchSize = 50
	}
	if interval <= 0 {
		interval = time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if backoff <= 0 {
		backoff = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &OutboxDispatcher{
		logger:     logger,
		outbox:     outbox,
		writer:     writer,
		metrics:    m,
		batchSize:  batchSize,
		interval:   interval,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Start runs the drain loop until ctx is cancelled.
func (d *OutboxDispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting outbox dispatcher",
		zap.Int("batch_size", d.batchSize),
		zap.Duration("interval", d.interval),
		zap.Int("max_retries", d.maxRetries),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("failed to process initial batch", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopping")
			return nil
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("failed to process batch", zap.Error(err))
			}
		}
	}
}

func (d *OutboxDispatcher) processBatch(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	events, err := d.outbox.GetPendingEvents(ctx, d.batchSize)
	if err != nil {
		return fmt.Errorf("get pending events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	d.logger.Debug("processing outbox batch", zap.Int("count", len(events)))

	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.processEvent(ctx, event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("failed to dispatch outbox event",
				zap.Error(err),
				zap.String("event_id", event.EventID),
				zap.String("topic", event.Topic),
			)
			// Keep going; the failed event stays pending.
		}
	}

	return nil
}

func (d *OutboxDispatcher) processEvent(ctx context.Context, event repository.OutboxEvent) error {
	var lastErr error

	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		msg := kafka.Message{
			Topic: event.Topic,
			Key:   []byte(event.AggregateID),
			Value: event.Payload,
		}

		err := d.writer.WriteMessages(ctx, msg)
		if err == nil {
			if markErr := d.outbox.MarkEventSent(ctx, event.EventID); markErr != nil {
				d.logger.Error("failed to mark event as sent",
					zap.Error(markErr),
					zap.String("event_id", event.EventID),
				)
				return markErr
			}

			d.metrics.Published(event.Topic)
			d.logger.Info("outbox event published",
				zap.String("event_id", event.EventID),
				zap.String("topic", event.Topic),
				zap.String("aggregate_id", event.AggregateID),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		lastErr = err
		d.metrics.PublishFailed(event.Topic)
		d.logger.Warn("failed to publish outbox event",
			zap.Error(err),
			zap.String("event_id", event.EventID),
			zap.String("topic", event.Topic),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", d.maxRetries),
		)

		if attempt < d.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.backoff * time.Duration(attempt)):
			}
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	errMsg := fmt.Sprintf("failed after %d attempts: %v", d.maxRetries, lastErr)
	if markErr := d.outbox.MarkEventFailed(ctx, event.EventID, errMsg); markErr != nil {
		d.logger.Error("failed to record event failure",
			zap.Error(markErr),
			zap.String("event_id", event.EventID),
		)
	}

	return fmt.Errorf("publish event after %d attempts: %w", d.maxRetries, lastErr)
}

// Close closes the Kafka writer.
func (d *OutboxDispatcher) Close() error {
	d.logger.Info("closing outbox dispatcher")
	return d.writer.Close()
}
