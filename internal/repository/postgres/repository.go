package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// OrderRepository implements repository.OrderRepository over PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create stores the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, customer_id, total_amount, status, payment_id, shipping_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, order.CustomerID, order.TotalAmount, string(order.Status),
		nullable(order.PaymentID), nullable(order.ShippingAddress),
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return err
	}

	for pos, item := range order.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, position, product_id, product_name, quantity, price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, pos, item.ProductID, item.ProductName, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID loads the order row and its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	order, err := r.scanOrder(ctx, r.pool.QueryRow(ctx,
		`SELECT id, customer_id, total_amount, status, payment_id, shipping_address, created_at, updated_at
		 FROM orders WHERE id = $1`, id))
	if err != nil {
		return domain.Order{}, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

// List returns one page matching the filter, newest first, plus the total
// match count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM orders"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT id, customer_id, total_amount, status, payment_id, shipping_address, created_at, updated_at
		 FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(ctx, rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	return orders, total, nil
}

// Update applies the supplied optional fields in a single UPDATE.
func (r *OrderRepository) Update(ctx context.Context, id string, upd repository.OrderUpdate) (domain.Order, error) {
	set := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	if upd.Status != nil {
		args = append(args, string(*upd.Status))
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if upd.PaymentID != nil {
		args = append(args, *upd.PaymentID)
		set = append(set, fmt.Sprintf("payment_id = $%d", len(args)))
	}
	if upd.ShippingAddress != nil {
		args = append(args, *upd.ShippingAddress)
		set = append(set, fmt.Sprintf("shipping_address = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return domain.Order{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Order{}, repository.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	return r.Update(ctx, id, repository.OrderUpdate{Status: &status})
}

func (r *OrderRepository) SetPaymentID(ctx context.Context, id, paymentID string) (domain.Order, error) {
	return r.Update(ctx, id, repository.OrderUpdate{PaymentID: &paymentID})
}

// Delete removes the order; items go with it via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, product_name, quantity, price
		 FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) scanOrder(ctx context.Context, row pgx.Row) (domain.Order, error) {
	var order domain.Order
	var status string
	var paymentID, shippingAddress *string

	err := row.Scan(&order.ID, &order.CustomerID, &order.TotalAmount, &status,
		&paymentID, &shippingAddress, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, repository.ErrNotFound
		}
		return domain.Order{}, err
	}

	order.Status = domain.Status(status)
	if paymentID != nil {
		order.PaymentID = *paymentID
	}
	if shippingAddress != nil {
		order.ShippingAddress = *shippingAddress
	}
	return order, nil
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
