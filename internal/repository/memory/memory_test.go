package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

func TestOrderRepositoryCRUD(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := domain.Order{
		ID:         "ord-1",
		CustomerID: "cust-1",
		Items:      []domain.OrderItem{{ProductID: "p1", Quantity: 1, Price: 10}},
		Status:     domain.StatusPending,
	}
	require.NoError(t, repo.Create(ctx, order))

	stored, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", stored.CustomerID)
	assert.False(t, stored.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	status := domain.StatusConfirmed
	paymentID := "pay-1"
	updated, err := repo.Update(ctx, "ord-1", repository.OrderUpdate{Status: &status, PaymentID: &paymentID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, "pay-1", updated.PaymentID)
	assert.True(t, updated.UpdatedAt.After(stored.UpdatedAt) || updated.UpdatedAt.Equal(stored.UpdatedAt))

	_, err = repo.Update(ctx, "missing", repository.OrderUpdate{Status: &status})
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "ord-1"))
	require.ErrorIs(t, repo.Delete(ctx, "ord-1"), repository.ErrNotFound)
}

func TestOrderRepositoryList(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		status := domain.StatusPending
		if i%2 == 0 {
			status = domain.StatusShipped
		}
		require.NoError(t, repo.Create(ctx, domain.Order{
			ID:         fmt.Sprintf("ord-%d", i),
			CustomerID: "cust-1",
			Status:     status,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, total, err := repo.List(ctx, repository.OrderFilter{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	require.Len(t, all, 10)
	// Newest first.
	assert.Equal(t, "ord-9", all[0].ID)
	assert.Equal(t, "ord-0", all[9].ID)

	shipped, total, err := repo.List(ctx, repository.OrderFilter{Status: domain.StatusShipped, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, shipped, 5)

	page, total, err := repo.List(ctx, repository.OrderFilter{Offset: 8, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Len(t, page, 2)

	empty, total, err := repo.List(ctx, repository.OrderFilter{Offset: 50, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Empty(t, empty)
}

func TestProductRepositoryGetBySKU(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.Product{ID: "p1", Name: "Widget", SKU: "WID-001"}))
	require.NoError(t, repo.Create(ctx, domain.Product{ID: "p2", Name: "NoSKU"}))

	found, err := repo.GetBySKU(ctx, "WID-001")
	require.NoError(t, err)
	assert.Equal(t, "p1", found.ID)

	_, err = repo.GetBySKU(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// An empty SKU never matches, even though one is stored.
	_, err = repo.GetBySKU(ctx, "")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOutboxRepository(t *testing.T) {
	repo := NewOutboxRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.InsertEvent(ctx, repository.OutboxEvent{
			EventID:     fmt.Sprintf("ev-%d", i),
			Topic:       "order.created",
			AggregateID: "ord-1",
			Payload:     []byte(`{}`),
		}))
	}

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	// Oldest first.
	assert.Equal(t, "ev-0", pending[0].EventID)

	limited, err := repo.GetPendingEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, repo.MarkEventSent(ctx, "ev-0"))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ev-1", pending[0].EventID)

	// A failed event stays pending with its error recorded.
	require.NoError(t, repo.MarkEventFailed(ctx, "ev-1", "broker down"))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "broker down", pending[0].LastError)

	require.ErrorIs(t, repo.MarkEventSent(ctx, "missing"), repository.ErrNotFound)
	require.ErrorIs(t, repo.MarkEventFailed(ctx, "missing", "x"), repository.ErrNotFound)
}

func TestOutboxRepositoryCompactsSentEvents(t *testing.T) {
	repo := NewOutboxRepository()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, repo.InsertEvent(ctx, repository.OutboxEvent{
			EventID:     fmt.Sprintf("ev-%d", i),
			Topic:       "order.created",
			AggregateID: "ord-1",
			Payload:     []byte(`{}`),
		}))
	}

	// Drain out of insertion order; sent events must not accumulate.
	for i := 99; i >= 0; i-- {
		require.NoError(t, repo.MarkEventSent(ctx, fmt.Sprintf("ev-%d", i)))
	}

	assert.Empty(t, repo.events)
	assert.Empty(t, repo.index)

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Remaining events stay addressable after a mid-slice removal.
	require.NoError(t, repo.InsertEvent(ctx, repository.OutboxEvent{EventID: "a", Topic: "t", AggregateID: "o"}))
	require.NoError(t, repo.InsertEvent(ctx, repository.OutboxEvent{EventID: "b", Topic: "t", AggregateID: "o"}))
	require.NoError(t, repo.InsertEvent(ctx, repository.OutboxEvent{EventID: "c", Topic: "t", AggregateID: "o"}))
	require.NoError(t, repo.MarkEventSent(ctx, "b"))
	require.NoError(t, repo.MarkEventFailed(ctx, "c", "broker down"))
	require.NoError(t, repo.MarkEventSent(ctx, "c"))
	require.NoError(t, repo.MarkEventSent(ctx, "a"))
}
