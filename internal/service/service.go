package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/pagination"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// OrderService is the order state machine. It validates every requested
// transition, applies it against the repository and hands the resulting
// domain event to the publisher. Both the HTTP path and the Kafka consumer
// go through it; no lock is held across repository or publisher calls.
type OrderService struct {
	logger         *zap.Logger
	orders         repository.OrderRepository
	publisher      EventPublisher
	processed      ProcessedEventsStore
	idempotencyTTL time.Duration
}

// NewOrderService wires the orchestrator. processed dedupes redelivered
// payment events; pass a MemoryProcessedEventsStore when no Redis is
// configured.
func NewOrderService(
	logger *zap.Logger,
	orders repository.OrderRepository,
	publisher EventPublisher,
	processed ProcessedEventsStore,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		logger:         logger,
		orders:         orders,
		publisher:      publisher,
		processed:      processed,
		idempotencyTTL: idempotencyTTL,
	}
}

// CreateOrderInput is the already-validated create command.
type CreateOrderInput struct {
	CustomerID      string
	Items           []domain.OrderItem
	ShippingAddress string
}

// UpdateOrderInput carries the optional fields of a partial update. Nil
// pointers leave the stored value untouched.
type UpdateOrderInput struct {
	Status          *domain.Status
	PaymentID       *string
	ShippingAddress *string
}

// ListOrdersInput filters and paginates the listing.
type ListOrdersInput struct {
	Status     domain.Status
	CustomerID string
	Page       int
	Limit      int
}

// CreateOrder validates the item list, computes the total once, writes the
// order as PENDING and emits order.created. On publish failure the order is
// still returned together with the error: the write committed.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	if input.CustomerID == "" {
		return domain.Order{}, fmt.Errorf("%w: customerId is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateItems(input.Items); err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:              uuid.NewString(),
		CustomerID:      input.CustomerID,
		Items:           input.Items,
		TotalAmount:     domain.TotalAmount(input.Items),
		Status:          domain.StatusPending,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.Float64("total_amount", order.TotalAmount),
	)

	if err := s.publisher.PublishOrderCreated(ctx, domain.OrderCreatedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		CreatedAt:   order.CreatedAt,
	}); err != nil {
		s.logger.Error("order created but event not published",
			zap.Error(err),
			zap.String("order_id", order.ID),
		)
		return order, fmt.Errorf("%w: order.created for %s: %v", domain.ErrPublishFailed, order.ID, err)
	}

	return order, nil
}

// GetOrderByID returns the order or a NotFound error.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListOrders returns one page of orders matching the filter plus pagination
// metadata.
func (s *OrderService) ListOrders(ctx context.Context, input ListOrdersInput) (pagination.Page[domain.Order], error) {
	page, limit := pagination.Normalize(input.Page, input.Limit)

	orders, total, err := s.orders.List(ctx, repository.OrderFilter{
		Status:     input.Status,
		CustomerID: input.CustomerID,
		Offset:     pagination.Offset(page, limit),
		Limit:      limit,
	})
	if err != nil {
		return pagination.Page[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}

	return pagination.NewPage(orders, total, page, limit), nil
}

// UpdateOrder applies only the supplied fields. When a status is supplied and
// differs from the current one, the transition is validated and
// order.status.changed is emitted; a status equal to the current one updates
// nothing observable and emits no event. This asymmetry with
// UpdateOrderStatus (which always emits) is deliberate.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) (domain.Order, error) {
	existing, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	statusChanging := input.Status != nil && *input.Status != existing.Status
	if statusChanging && !existing.Status.CanTransition(*input.Status) {
		return domain.Order{}, fmt.Errorf("%w: cannot transition order %s from %s to %s",
			domain.ErrInvalidState, id, existing.Status, *input.Status)
	}
	// paymentId, once set, is never cleared.
	if input.PaymentID != nil && *input.PaymentID == "" {
		return domain.Order{}, fmt.Errorf("%w: paymentId cannot be cleared", domain.ErrInvalidInput)
	}

	updated, err := s.orders.Update(ctx, id, repository.OrderUpdate{
		Status:          input.Status,
		PaymentID:       input.PaymentID,
		ShippingAddress: input.ShippingAddress,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
		}
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}

	if statusChanging {
		if err := s.publisher.PublishOrderStatusChanged(ctx, domain.OrderStatusChangedEvent{
			OrderID:   id,
			OldStatus: existing.Status,
			NewStatus: updated.Status,
			UpdatedAt: updated.UpdatedAt,
		}); err != nil {
			s.logger.Error("order updated but status event not published",
				zap.Error(err),
				zap.String("order_id", id),
			)
			return updated, fmt.Errorf("%w: order.status.changed for %s: %v", domain.ErrPublishFailed, id, err)
		}
	}

	return updated, nil
}

// UpdateOrderStatus validates and applies a status transition and always
// emits order.status.changed, even when the new status equals the current
// one. Callers that only want change notifications use UpdateOrder.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	existing, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !existing.Status.CanTransition(status) {
		return domain.Order{}, fmt.Errorf("%w: cannot transition order %s from %s to %s",
			domain.ErrInvalidState, id, existing.Status, status)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
		}
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	s.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("old_status", string(existing.Status)),
		zap.String("new_status", string(status)),
	)

	if err := s.publisher.PublishOrderStatusChanged(ctx, domain.OrderStatusChangedEvent{
		OrderID:   id,
		OldStatus: existing.Status,
		NewStatus: status,
		UpdatedAt: updated.UpdatedAt,
	}); err != nil {
		s.logger.Error("status updated but event not published",
			zap.Error(err),
			zap.String("order_id", id),
		)
		return updated, fmt.Errorf("%w: order.status.changed for %s: %v", domain.ErrPublishFailed, id, err)
	}

	return updated, nil
}

// DeleteOrder removes an order. Only PENDING orders may be deleted; the
// record is left untouched otherwise.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	if order.Status != domain.StatusPending {
		return fmt.Errorf("%w: only pending orders can be deleted, order %s is %s",
			domain.ErrInvalidState, id, order.Status)
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
		}
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.Info("order deleted",
		zap.String("order_id", id),
		zap.String("customer_id", order.CustomerID),
	)

	if err := s.publisher.PublishOrderDeleted(ctx, domain.OrderDeletedEvent{
		OrderID:    id,
		CustomerID: order.CustomerID,
		DeletedAt:  time.Now().UTC(),
	}); err != nil {
		s.logger.Error("order deleted but event not published",
			zap.Error(err),
			zap.String("order_id", id),
		)
		return fmt.Errorf("%w: order.deleted for %s: %v", domain.ErrPublishFailed, id, err)
	}

	return nil
}

// HandlePaymentProcessed maps a payment outcome onto the state machine:
// success sets the payment id and confirms the order, failure cancels it.
// Both paths go through UpdateOrderStatus so order.status.changed is always
// emitted. The processed-events ledger absorbs broker redelivery; a payment
// id seen within the ttl is skipped without side effects.
func (s *OrderService) HandlePaymentProcessed(ctx context.Context, event domain.PaymentProcessedEvent) error {
	if event.OrderID == "" || event.PaymentID == "" {
		return fmt.Errorf("%w: orderId and paymentId are required", domain.ErrInvalidInput)
	}

	alreadyProcessed, err := s.processed.IsProcessed(ctx, event.PaymentID)
	if err != nil {
		return fmt.Errorf("check processed ledger: %w", err)
	}
	if alreadyProcessed {
		s.logger.Info("payment event already processed, skipping",
			zap.String("payment_id", event.PaymentID),
			zap.String("order_id", event.OrderID),
		)
		return nil
	}

	if _, err := s.GetOrderByID(ctx, event.OrderID); err != nil {
		return err
	}

	if event.Success {
		if _, err := s.orders.SetPaymentID(ctx, event.OrderID, event.PaymentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: order %s", domain.ErrNotFound, event.OrderID)
			}
			return fmt.Errorf("set payment id: %w", err)
		}
		if _, err := s.UpdateOrderStatus(ctx, event.OrderID, domain.StatusConfirmed); err != nil {
			return err
		}
	} else {
		if _, err := s.UpdateOrderStatus(ctx, event.OrderID, domain.StatusCancelled); err != nil {
			return err
		}
	}

	if err := s.processed.MarkProcessed(ctx, event.PaymentID, s.idempotencyTTL); err != nil {
		// The transition already committed; a redelivery will be absorbed by
		// the idempotent status reassignment.
		s.logger.Warn("failed to mark payment event processed",
			zap.Error(err),
			zap.String("payment_id", event.PaymentID),
		)
	}

	s.logger.Info("payment event handled",
		zap.String("payment_id", event.PaymentID),
		zap.String("order_id", event.OrderID),
		zap.Bool("success", event.Success),
	)

	return nil
}
