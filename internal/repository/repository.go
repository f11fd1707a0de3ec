package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/PhiQuangHuy/order-service/internal/domain"
)

// ErrNotFound is returned when a record does not exist. The service layer
// translates it to domain.ErrNotFound before it reaches callers.
var ErrNotFound = errors.New("record not found")

// OrderFilter narrows List. Zero values mean "no constraint"; Offset/Limit
// are expected to be pre-normalized by the caller.
type OrderFilter struct {
	Status     domain.Status
	CustomerID string
	Offset     int
	Limit      int
}

// OrderUpdate carries the optional fields of a partial update. Nil pointers
// leave the stored value untouched.
type OrderUpdate struct {
	Status          *domain.Status
	PaymentID       *string
	ShippingAddress *string
}

// OrderRepository owns durable order state. Every write is a single atomic
// record update keyed by id; concurrent writes to different orders never
// interfere.
type OrderRepository interface {
	// Create stores a new order.
	Create(ctx context.Context, order domain.Order) error

	// GetByID returns the order or ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.Order, error)

	// List returns one page of orders matching the filter, newest first,
	// plus the total match count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// Update applies the supplied fields and refreshes updatedAt. Returns the
	// updated order or ErrNotFound.
	Update(ctx context.Context, id string, upd OrderUpdate) (domain.Order, error)

	// UpdateStatus writes only the status field. Returns the updated order or
	// ErrNotFound.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)

	// SetPaymentID writes only the payment id. Returns the updated order or
	// ErrNotFound.
	SetPaymentID(ctx context.Context, id, paymentID string) (domain.Order, error)

	// Delete removes the order. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	Name   string // substring match
	SKU    string
	Status domain.ProductStatus
	Offset int
	Limit  int
}

// ProductUpdate carries the optional fields of a partial product update.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	SKU         *string
	Status      *domain.ProductStatus
}

// ProductRepository owns durable product state.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// OutboxEvent is one pending domain event awaiting delivery to the broker.
type OutboxEvent struct {
	EventID     string
	Topic       string
	AggregateID string // order id, used as the Kafka message key
	Payload     json.RawMessage
	CreatedAt   time.Time
	SentAt      *time.Time
	LastError   string
}

// OutboxRepository persists events alongside state so a crash between write
// and publish cannot lose notifications. Drained by the outbox dispatcher.
type OutboxRepository interface {
	// InsertEvent stores a pending event.
	InsertEvent(ctx context.Context, event OutboxEvent) error

	// GetPendingEvents returns up to limit unsent events, oldest first.
	GetPendingEvents(ctx context.Context, limit int) ([]OutboxEvent, error)

	// MarkEventSent records successful delivery.
	MarkEventSent(ctx context.Context, eventID string) error

	// MarkEventFailed records the last delivery error; the event stays
	// pending and will be retried on a later pass.
	MarkEventFailed(ctx context.Context, eventID, errMsg string) error
}
