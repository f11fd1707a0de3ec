package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository/memory"
)

func newProductService(t *testing.T) *ProductService {
	t.Helper()
	return NewProductService(zap.NewNop(), memory.NewProductRepository())
}

func TestCreateProduct(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:     "Widget",
		Price:    9.99,
		Quantity: 100,
		SKU:      "WID-001",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, domain.ProductActive, product.Status)

	stored, err := svc.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stored.Name)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing name", CreateProductInput{Price: 1, Quantity: 1}},
		{"zero price", CreateProductInput{Name: "x", Price: 0}},
		{"negative quantity", CreateProductInput{Name: "x", Price: 1, Quantity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.input)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Widget", Price: 1, SKU: "WID-001"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Other", Price: 2, SKU: "WID-001"})
	require.ErrorIs(t, err, domain.ErrConflict)

	// Empty SKUs never collide.
	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "A", Price: 1})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "B", Price: 1})
	require.NoError(t, err)
}

func TestUpdateProduct(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Widget", Price: 1, SKU: "WID-001"})
	require.NoError(t, err)
	other, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Gadget", Price: 2, SKU: "GAD-001"})
	require.NoError(t, err)

	price := 3.5
	status := domain.ProductInactive
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Price: &price, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 3.5, updated.Price)
	assert.Equal(t, domain.ProductInactive, updated.Status)

	bad := -1.0
	_, err = svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Price: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// Changing SKU onto another product's is a conflict.
	taken := other.SKU
	_, err = svc.UpdateProduct(ctx, product.ID, UpdateProductInput{SKU: &taken})
	require.ErrorIs(t, err, domain.ErrConflict)

	// Re-submitting its own SKU is fine.
	own := "WID-001"
	_, err = svc.UpdateProduct(ctx, product.ID, UpdateProductInput{SKU: &own})
	require.NoError(t, err)
}

func TestListProducts(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	for _, name := range []string{"Red Widget", "Blue Widget", "Gadget"} {
		_, err := svc.CreateProduct(ctx, CreateProductInput{Name: name, Price: 1, Quantity: 1})
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(ctx, ListProductsInput{Name: "widget"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.TotalItems)

	all, err := svc.ListProducts(ctx, ListProductsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
	assert.Equal(t, 3, all.Meta.TotalItems)
	assert.Equal(t, 2, all.Meta.TotalPages)
}

func TestDeleteProduct(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Widget", Price: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	_, err = svc.GetProductByID(ctx, product.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteProduct(ctx, "no-such-product")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
