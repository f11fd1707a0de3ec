package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/metrics"
)

// PaymentHandler is the orchestrator entry point the consumer drives.
type PaymentHandler interface {
	HandlePaymentProcessed(ctx context.Context, event domain.PaymentProcessedEvent) error
}

// DLQ receives messages the consumer could not handle. Implemented by
// DLQPublisher.
type DLQ interface {
	Publish(ctx context.Context, original kafka.Message, cause error, orderID, paymentID string) error
}

// PaymentConsumer reads payment.processed with a single consumer group and
// dispatches one message at a time to the handler. The broker delivers
// at-least-once; offsets are committed manually. A malformed or unprocessable
// message is logged, routed to the DLQ and committed, so the loop never stalls
// on one event; if the DLQ write itself fails the offset is held back and the
// broker redelivers.
type PaymentConsumer struct {
	logger  *zap.Logger
	reader  *kafka.Reader
	handler PaymentHandler
	dlq     DLQ
	metrics *metrics.EventMetrics
}

// NewPaymentConsumer creates the payment-outcome consumer.
func NewPaymentConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID, topic string,
	handler PaymentHandler,
	dlq DLQ,
	m *metrics.EventMetrics,
) *PaymentConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &PaymentConsumer{
		logger:  logger,
		reader:  reader,
		handler: handler,
		dlq:     dlq,
		metrics: m,
	}
}

// Start runs the consumption loop until ctx is cancelled.
func (c *PaymentConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		// Commit only after the message was handled or safely dead-lettered;
		// otherwise the broker redelivers it.
		if c.processMessage(ctx, m) {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("failed to commit message offset",
					zap.Error(err),
					zap.String("topic", m.Topic),
					zap.Int("partition", m.Partition),
					zap.Int64("offset", m.Offset),
				)
			}
		}
	}
}

// processMessage decodes and dispatches one message. It reports whether the
// offset may be committed: true after successful handling or a successful
// dead-letter write, false when the DLQ write itself failed, so the poison
// message is redelivered instead of lost without a record.
func (c *PaymentConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	event, err := decodePaymentProcessed(m.Value)
	if err != nil {
		c.metrics.Consumed(m.Topic, "decode_error")
		c.logger.Error("failed to decode payment event, sending to DLQ",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		return c.sendToDLQ(ctx, m, err, "", "")
	}

	c.logger.Info("received payment processed event",
		zap.String("payment_id", event.PaymentID),
		zap.String("order_id", event.OrderID),
		zap.Bool("success", event.Success),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	if err := c.handler.HandlePaymentProcessed(ctx, event); err != nil {
		c.metrics.Consumed(m.Topic, "handler_error")
		c.logger.Error("failed to handle payment event, sending to DLQ",
			zap.Error(err),
			zap.String("payment_id", event.PaymentID),
			zap.String("order_id", event.OrderID),
		)
		return c.sendToDLQ(ctx, m, err, event.OrderID, event.PaymentID)
	}

	c.metrics.Consumed(m.Topic, "ok")
	return true
}

// sendToDLQ dead-letters the message and reports whether the offset may be
// committed. Without a configured DLQ the message is dropped as logged.
func (c *PaymentConsumer) sendToDLQ(ctx context.Context, m kafka.Message, cause error, orderID, paymentID string) bool {
	if c.dlq == nil {
		return true
	}
	if err := c.dlq.Publish(ctx, m, cause, orderID, paymentID); err != nil {
		c.logger.Error("failed to publish to DLQ, offset not committed",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		return false
	}
	return true
}

// decodePaymentProcessed parses and validates an inbound payment event.
func decodePaymentProcessed(value []byte) (domain.PaymentProcessedEvent, error) {
	var event domain.PaymentProcessedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return domain.PaymentProcessedEvent{}, fmt.Errorf("unmarshal payment event: %w", err)
	}
	if event.OrderID == "" {
		return domain.PaymentProcessedEvent{}, fmt.Errorf("payment event missing orderId")
	}
	if event.PaymentID == "" {
		return domain.PaymentProcessedEvent{}, fmt.Errorf("payment event missing paymentId")
	}
	return event, nil
}

// Close closes the Kafka reader.
func (c *PaymentConsumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
