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

// ProductRepository implements repository.ProductRepository over PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, name, description, price, quantity, sku, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID, product.Name, nullable(product.Description), product.Price,
		product.Quantity, nullable(product.SKU), string(product.Status),
		product.CreatedAt, product.UpdatedAt)
	return err
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	return r.scanProduct(r.pool.QueryRow(ctx,
		`SELECT id, name, description, price, quantity, sku, status, created_at, updated_at
		 FROM products WHERE id = $1`, id))
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	return r.scanProduct(r.pool.QueryRow(ctx,
		`SELECT id, name, description, price, quantity, sku, status, created_at, updated_at
		 FROM products WHERE sku = $1`, sku))
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.SKU != "" {
		args = append(args, filter.SKU)
		where = append(where, fmt.Sprintf("sku = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM products"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT id, name, description, price, quantity, sku, status, created_at, updated_at
		 FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, upd repository.ProductUpdate) (domain.Product, error) {
	set := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	if upd.Name != nil {
		args = append(args, *upd.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Description != nil {
		args = append(args, *upd.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}
	if upd.Price != nil {
		args = append(args, *upd.Price)
		set = append(set, fmt.Sprintf("price = $%d", len(args)))
	}
	if upd.Quantity != nil {
		args = append(args, *upd.Quantity)
		set = append(set, fmt.Sprintf("quantity = $%d", len(args)))
	}
	if upd.SKU != nil {
		args = append(args, *upd.SKU)
		set = append(set, fmt.Sprintf("sku = $%d", len(args)))
	}
	if upd.Status != nil {
		args = append(args, string(*upd.Status))
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return domain.Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Product{}, repository.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) scanProduct(row pgx.Row) (domain.Product, error) {
	var product domain.Product
	var status string
	var description, sku *string

	err := row.Scan(&product.ID, &product.Name, &description, &product.Price,
		&product.Quantity, &sku, &status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, repository.ErrNotFound
		}
		return domain.Product{}, err
	}

	product.Status = domain.ProductStatus(status)
	if description != nil {
		product.Description = *description
	}
	if sku != nil {
		product.SKU = *sku
	}
	return product, nil
}
