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

// ProductService owns catalog CRUD. Products publish no events.
type ProductService struct {
	logger   *zap.Logger
	products repository.ProductRepository
}

// NewProductService wires the catalog service.
func NewProductService(logger *zap.Logger, products repository.ProductRepository) *ProductService {
	return &ProductService{
		logger:   logger,
		products: products,
	}
}

// CreateProductInput is the already-validated create command.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	SKU         string
	Status      domain.ProductStatus
}

// UpdateProductInput carries the optional fields of a partial update.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	SKU         *string
	Status      *domain.ProductStatus
}

// ListProductsInput filters and paginates the listing.
type ListProductsInput struct {
	Name   string
	SKU    string
	Status domain.ProductStatus
	Page   int
	Limit  int
}

// CreateProduct validates price/quantity and SKU uniqueness, then stores the
// product.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (domain.Product, error) {
	if input.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if input.Price <= 0 {
		return domain.Product{}, fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	}
	if input.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("%w: quantity cannot be negative", domain.ErrInvalidInput)
	}

	if input.SKU != "" {
		if _, err := s.products.GetBySKU(ctx, input.SKU); err == nil {
			return domain.Product{}, fmt.Errorf("%w: product with SKU %s already exists", domain.ErrConflict, input.SKU)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("check sku: %w", err)
		}
	}

	status := input.Status
	if status == "" {
		status = domain.ProductActive
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		SKU:         input.SKU,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU),
	)

	return product, nil
}

// GetProductByID returns the product or a NotFound error.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns one page matching the filter plus pagination metadata.
func (s *ProductService) ListProducts(ctx context.Context, input ListProductsInput) (pagination.Page[domain.Product], error) {
	page, limit := pagination.Normalize(input.Page, input.Limit)

	products, total, err := s.products.List(ctx, repository.ProductFilter{
		Name:   input.Name,
		SKU:    input.SKU,
		Status: input.Status,
		Offset: pagination.Offset(page, limit),
		Limit:  limit,
	})
	if err != nil {
		return pagination.Page[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}

	return pagination.NewPage(products, total, page, limit), nil
}

// UpdateProduct applies only the supplied fields, re-running the create-time
// validations on whatever is present.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (domain.Product, error) {
	existing, err := s.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if input.Price != nil && *input.Price <= 0 {
		return domain.Product{}, fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("%w: quantity cannot be negative", domain.ErrInvalidInput)
	}

	if input.SKU != nil && *input.SKU != "" && *input.SKU != existing.SKU {
		other, err := s.products.GetBySKU(ctx, *input.SKU)
		if err == nil && other.ID != id {
			return domain.Product{}, fmt.Errorf("%w: product with SKU %s already exists", domain.ErrConflict, *input.SKU)
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("check sku: %w", err)
		}
	}

	updated, err := s.products.Update(ctx, id, repository.ProductUpdate{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		SKU:         input.SKU,
		Status:      input.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	return updated, nil
}

// DeleteProduct removes the product or returns NotFound.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}
