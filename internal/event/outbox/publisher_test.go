package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository/memory"
)

func TestPublisherEnqueuesKeyedByOrder(t *testing.T) {
	outboxRepo := memory.NewOutboxRepository()
	publisher := NewPublisher(zap.NewNop(), outboxRepo)
	ctx := context.Background()

	require.NoError(t, publisher.PublishOrderCreated(ctx, domain.OrderCreatedEvent{
		OrderID:     "ord-1",
		CustomerID:  "cust-1",
		TotalAmount: 25.5,
		CreatedAt:   time.Now().UTC(),
	}))
	require.NoError(t, publisher.PublishOrderStatusChanged(ctx, domain.OrderStatusChangedEvent{
		OrderID:   "ord-1",
		OldStatus: domain.StatusPending,
		NewStatus: domain.StatusConfirmed,
	}))
	require.NoError(t, publisher.PublishOrderDeleted(ctx, domain.OrderDeletedEvent{
		OrderID: "ord-2",
	}))

	pending, err := outboxRepo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	// Insertion order is preserved and every event is keyed by its order id.
	assert.Equal(t, domain.TopicOrderCreated, pending[0].Topic)
	assert.Equal(t, domain.TopicOrderStatusChanged, pending[1].Topic)
	assert.Equal(t, domain.TopicOrderDeleted, pending[2].Topic)
	assert.Equal(t, "ord-1", pending[0].AggregateID)
	assert.Equal(t, "ord-1", pending[1].AggregateID)
	assert.Equal(t, "ord-2", pending[2].AggregateID)
	assert.NotEmpty(t, pending[0].EventID)

	var created domain.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(pending[0].Payload, &created))
	assert.Equal(t, 25.5, created.TotalAmount)
}
