package domain

import (
	"fmt"
	"time"
)

// ProductStatus is the catalog availability status of a product.
type ProductStatus string

const (
	ProductActive       ProductStatus = "ACTIVE"
	ProductInactive     ProductStatus = "INACTIVE"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
)

// ParseProductStatus validates a raw product status value.
func ParseProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(s)
	switch status {
	case ProductActive, ProductInactive, ProductDiscontinued:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown product status %q", ErrInvalidInput, s)
}

// Product is a catalog record.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Quantity    int
	SKU         string
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
