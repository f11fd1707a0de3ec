// Package memory holds in-memory repository implementations used for
// development and tests. Production deployments use the postgres package.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// OrderRepository implements repository.OrderRepository over a map guarded by
// a mutex. Per-key writes are serialized the same way a row lock would.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderRepository creates an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]domain.Order),
	}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	r.orders[order.ID] = order
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists {
		return domain.Order{}, repository.ErrNotFound
	}
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		matched = append(matched, order)
	}

	// Newest first, matching the postgres ORDER BY created_at DESC.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []domain.Order{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, upd repository.OrderUpdate) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[id]
	if !exists {
		return domain.Order{}, repository.ErrNotFound
	}

	if upd.Status != nil {
		order.Status = *upd.Status
	}
	if upd.PaymentID != nil {
		order.PaymentID = *upd.PaymentID
	}
	if upd.ShippingAddress != nil {
		order.ShippingAddress = *upd.ShippingAddress
	}
	order.UpdatedAt = time.Now().UTC()

	r.orders[id] = order
	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	return r.Update(ctx, id, repository.OrderUpdate{Status: &status})
}

func (r *OrderRepository) SetPaymentID(ctx context.Context, id, paymentID string) (domain.Order, error) {
	return r.Update(ctx, id, repository.OrderUpdate{PaymentID: &paymentID})
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// ProductRepository implements repository.ProductRepository in memory.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]domain.Product),
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}
	r.products[product.ID] = product
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return domain.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.products {
		if product.SKU != "" && product.SKU == sku {
			return product, nil
		}
	}
	return domain.Product{}, repository.ErrNotFound
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.SKU != "" && product.SKU != filter.SKU {
			continue
		}
		if filter.Status != "" && product.Status != filter.Status {
			continue
		}
		matched = append(matched, product)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []domain.Product{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, upd repository.ProductUpdate) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return domain.Product{}, repository.ErrNotFound
	}

	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Price != nil {
		product.Price = *upd.Price
	}
	if upd.Quantity != nil {
		product.Quantity = *upd.Quantity
	}
	if upd.SKU != nil {
		product.SKU = *upd.SKU
	}
	if upd.Status != nil {
		product.Status = *upd.Status
	}
	product.UpdatedAt = time.Now().UTC()

	r.products[id] = product
	return product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}
