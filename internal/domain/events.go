package domain

import "time"

// Topics the service publishes to and consumes from. All events for one order
// share the order id as the message key, so a single consumer group observes
// them in send order.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOrderDeleted       = "order.deleted"
	TopicPaymentProcessed   = "payment.processed"
)

// OrderCreatedEvent is published after a new order is written.
type OrderCreatedEvent struct {
	OrderID     string      `json:"orderId"`
	CustomerID  string      `json:"customerId"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OrderStatusChangedEvent is published after an order status write.
type OrderStatusChangedEvent struct {
	OrderID   string    `json:"orderId"`
	OldStatus Status    `json:"oldStatus"`
	NewStatus Status    `json:"newStatus"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderDeletedEvent is published after a pending order is removed.
type OrderDeletedEvent struct {
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	DeletedAt  time.Time `json:"deletedAt"`
}

// PaymentProcessedEvent is the inbound payment outcome consumed from the
// payment service. Delivery is at-least-once; PaymentID doubles as the
// idempotency key.
type PaymentProcessedEvent struct {
	PaymentID   string    `json:"paymentId"`
	OrderID     string    `json:"orderId"`
	Amount      float64   `json:"amount"`
	Success     bool      `json:"success"`
	ProcessedAt time.Time `json:"processedAt"`
}
