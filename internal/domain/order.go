package domain

import (
	"fmt"
	"time"
)

// Status is the order lifecycle status.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// statusRank orders the forward progression of the lifecycle. CANCELLED is
// not part of the progression; it is reachable from any non-terminal status.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	switch status {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// IsTerminal reports whether no further transitions are modeled from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
// Allowed moves:
//   - next == s (idempotent reassignment, absorbs duplicate payment events)
//   - any forward jump along PENDING -> CONFIRMED -> PROCESSING -> SHIPPED -> DELIVERED
//   - CANCELLED from any non-terminal status
func (s Status) CanTransition(next Status) bool {
	if next == s {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// OrderItem is a line item of an order. Items are immutable after creation.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is a customer purchase record tracked through the status lifecycle.
type Order struct {
	ID              string
	CustomerID      string
	Items           []OrderItem
	TotalAmount     float64
	Status          Status
	PaymentID       string
	ShippingAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TotalAmount computes the item sum. It is evaluated once at creation and
// stored, never recomputed on read.
func TotalAmount(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

// ValidateItems enforces the creation guard: at least one item, every
// quantity and price positive.
func ValidateItems(items []OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}
	for i, item := range items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: items[%d].productId is required", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be > 0", ErrInvalidInput, i)
		}
		if item.Price <= 0 {
			return fmt.Errorf("%w: items[%d].price must be > 0", ErrInvalidInput, i)
		}
	}
	return nil
}
