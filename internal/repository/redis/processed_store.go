package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProcessedEventsStore implements service.ProcessedEventsStore on Redis.
// One key per handled event with the ttl as expiry, so the ledger cleans
// itself up.
type ProcessedEventsStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewProcessedEventsStore creates a Redis-backed idempotency ledger.
func NewProcessedEventsStore(client *redis.Client, logger *zap.Logger) *ProcessedEventsStore {
	return &ProcessedEventsStore{
		client: client,
		logger: logger,
	}
}

func processedKey(eventID string) string {
	return fmt.Sprintf("processed-event:%s", eventID)
}

// MarkProcessed records eventID for ttl. SET is idempotent; re-marking only
// refreshes the expiry.
func (s *ProcessedEventsStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, processedKey(eventID), "1", ttl).Err(); err != nil {
		s.logger.Error("failed to mark event processed in redis",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// IsProcessed reports whether eventID is still in the ledger.
func (s *ProcessedEventsStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, processedKey(eventID)).Result()
	if err != nil {
		s.logger.Error("failed to check processed event in redis",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, fmt.Errorf("check processed: %w", err)
	}
	return n > 0, nil
}
