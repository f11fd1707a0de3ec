package httpapi

import (
	"time"

	"github.com/PhiQuangHuy/order-service/internal/domain"
)

// CreateOrderRequest is the POST /orders body.
type CreateOrderRequest struct {
	CustomerID      string             `json:"customerId"`
	Items           []domain.OrderItem `json:"items"`
	ShippingAddress string             `json:"shippingAddress,omitempty"`
}

// UpdateOrderRequest is the PUT /orders/{id} body. Absent fields are left
// untouched.
type UpdateOrderRequest struct {
	Status          *string `json:"status,omitempty"`
	PaymentID       *string `json:"paymentId,omitempty"`
	ShippingAddress *string `json:"shippingAddress,omitempty"`
}

// UpdateOrderStatusRequest is the PUT /orders/{id}/status body.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customerId"`
	Items           []domain.OrderItem `json:"items"`
	TotalAmount     float64            `json:"totalAmount"`
	Status          string             `json:"status"`
	PaymentID       string             `json:"paymentId,omitempty"`
	ShippingAddress string             `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func toOrderResponse(order domain.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		PaymentID:       order.PaymentID,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// CreateProductRequest is the POST /products body.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	SKU         string  `json:"sku,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// UpdateProductRequest is the PUT /products/{id} body.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	SKU         *string  `json:"sku,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	SKU         string    `json:"sku,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(product domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		SKU:         product.SKU,
		Status:      string(product.Status),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// errorResponse is the uniform error body: a semantic kind plus a message,
// never storage or broker details.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
