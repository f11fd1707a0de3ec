//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// startPostgres runs a throwaway postgres container, waits for it and applies
// the embedded migrations. Returns a pool on the migrated database.
func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("order_user"),
		tcpostgres.WithPassword("order_password"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, pingErr, "database not reachable after retries")

	require.NoError(t, Migrate(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func testOrder(id, customerID string, status domain.Status, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:          id,
		CustomerID:  customerID,
		Items:       []domain.OrderItem{{ProductID: "p1", ProductName: "Widget", Quantity: 2, Price: 10}},
		TotalAmount: 20,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestOrderRepository_Integration(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewOrderRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Create and GetByID", func(t *testing.T) {
		order := testOrder("order-1", "cust-1", domain.StatusPending, now)
		order.ShippingAddress = "1 Main St"
		require.NoError(t, repo.Create(ctx, order))

		got, err := repo.GetByID(ctx, "order-1")
		require.NoError(t, err)
		assert.Equal(t, order.CustomerID, got.CustomerID)
		assert.Equal(t, order.TotalAmount, got.TotalAmount)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, "1 Main St", got.ShippingAddress)
		assert.Empty(t, got.PaymentID) // NULL column round-trips as ""
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Widget", got.Items[0].ProductName)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("List with filter and pagination", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			status := domain.StatusPending
			customer := "cust-list"
			if i%2 == 0 {
				status = domain.StatusShipped
			}
			order := testOrder(
				fmt.Sprintf("order-list-%d", i),
				customer,
				status,
				now.Add(time.Duration(i)*time.Second),
			)
			require.NoError(t, repo.Create(ctx, order))
		}

		orders, total, err := repo.List(ctx, repository.OrderFilter{
			CustomerID: "cust-list",
			Limit:      3,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, orders, 3)
		// Newest first.
		assert.Equal(t, "order-list-4", orders[0].ID)
		require.Len(t, orders[0].Items, 1)

		shipped, total, err := repo.List(ctx, repository.OrderFilter{
			CustomerID: "cust-list",
			Status:     domain.StatusShipped,
			Limit:      10,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, shipped, 3)

		page2, total, err := repo.List(ctx, repository.OrderFilter{
			CustomerID: "cust-list",
			Offset:     3,
			Limit:      3,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, page2, 2)
	})

	t.Run("Update applies only supplied fields", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testOrder("order-upd", "cust-1", domain.StatusPending, now)))

		addr := "2 Side St"
		updated, err := repo.Update(ctx, "order-upd", repository.OrderUpdate{ShippingAddress: &addr})
		require.NoError(t, err)
		assert.Equal(t, addr, updated.ShippingAddress)
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.True(t, updated.UpdatedAt.After(now))

		_, err = repo.Update(ctx, "missing", repository.OrderUpdate{ShippingAddress: &addr})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("UpdateStatus and SetPaymentID", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testOrder("order-pay", "cust-1", domain.StatusPending, now)))

		updated, err := repo.SetPaymentID(ctx, "order-pay", "pay-1")
		require.NoError(t, err)
		assert.Equal(t, "pay-1", updated.PaymentID)

		updated, err = repo.UpdateStatus(ctx, "order-pay", domain.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, updated.Status)
		assert.Equal(t, "pay-1", updated.PaymentID)
	})

	t.Run("Delete cascades to items", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testOrder("order-del", "cust-1", domain.StatusPending, now)))
		require.NoError(t, repo.Delete(ctx, "order-del"))

		_, err := repo.GetByID(ctx, "order-del")
		require.ErrorIs(t, err, repository.ErrNotFound)

		var items int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT count(*) FROM order_items WHERE order_id = $1`, "order-del").Scan(&items))
		assert.Zero(t, items)

		require.ErrorIs(t, repo.Delete(ctx, "order-del"), repository.ErrNotFound)
	})
}

func TestProductRepository_Integration(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewProductRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	product := domain.Product{
		ID:        "prod-1",
		Name:      "Red Widget",
		Price:     9.99,
		Quantity:  100,
		SKU:       "WID-001",
		Status:    domain.ProductActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, product))

	t.Run("GetBySKU", func(t *testing.T) {
		got, err := repo.GetBySKU(ctx, "WID-001")
		require.NoError(t, err)
		assert.Equal(t, "prod-1", got.ID)
		assert.Empty(t, got.Description)

		_, err = repo.GetBySKU(ctx, "missing")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("List matches name case-insensitively", func(t *testing.T) {
		products, total, err := repo.List(ctx, repository.ProductFilter{Name: "red", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, products, 1)
		assert.Equal(t, "prod-1", products[0].ID)
	})

	t.Run("Update and Delete", func(t *testing.T) {
		price := 19.99
		status := domain.ProductDiscontinued
		updated, err := repo.Update(ctx, "prod-1", repository.ProductUpdate{Price: &price, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, 19.99, updated.Price)
		assert.Equal(t, domain.ProductDiscontinued, updated.Status)

		require.NoError(t, repo.Delete(ctx, "prod-1"))
		require.ErrorIs(t, repo.Delete(ctx, "prod-1"), repository.ErrNotFound)
	})
}

func TestOutboxRepository_Integration(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewOutboxRepository(pool)

	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		require.NoError(t, repo.InsertEvent(ctx, repository.OutboxEvent{
			EventID:     id,
			Topic:       domain.TopicOrderCreated,
			AggregateID: "order-1",
			Payload:     []byte(`{"orderId":"order-1"}`),
		}))
	}

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	// Oldest first.
	assert.Equal(t, "ev-1", pending[0].EventID)
	assert.Equal(t, "order-1", pending[0].AggregateID)
	assert.JSONEq(t, `{"orderId":"order-1"}`, string(pending[0].Payload))

	require.NoError(t, repo.MarkEventSent(ctx, "ev-1"))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ev-2", pending[0].EventID)

	// A failed event keeps its error and stays pending for the next pass.
	require.NoError(t, repo.MarkEventFailed(ctx, "ev-2", "broker down"))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "broker down", pending[0].LastError)

	limited, err := repo.GetPendingEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.ErrorIs(t, repo.MarkEventSent(ctx, "missing"), repository.ErrNotFound)
}
