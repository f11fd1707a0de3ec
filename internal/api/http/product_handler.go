package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/pagination"
	"github.com/PhiQuangHuy/order-service/internal/service"
)

// ProductHandler exposes the catalog over HTTP.
type ProductHandler struct {
	logger  *zap.Logger
	service *service.ProductService
}

// NewProductHandler creates the product HTTP handler.
func NewProductHandler(logger *zap.Logger, svc *service.ProductService) *ProductHandler {
	return &ProductHandler{
		logger:  logger,
		service: svc,
	}
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, badRequest("invalid request body", err))
		return
	}

	input := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		SKU:         req.SKU,
	}
	if req.Status != "" {
		status, err := domain.ParseProductStatus(req.Status)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		input.Status = status
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toProductResponse(product))
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(product))
}

// List handles GET /products with ?name, ?sku, ?status, ?page, ?limit.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status domain.ProductStatus
	if raw := q.Get("status"); raw != "" {
		parsed, err := domain.ParseProductStatus(raw)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		status = parsed
	}

	page, err := h.service.ListProducts(r.Context(), service.ListProductsInput{
		Name:   q.Get("name"),
		SKU:    q.Get("sku"),
		Status: status,
		Page:   queryInt(q.Get("page")),
		Limit:  queryInt(q.Get("limit")),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	data := make([]ProductResponse, 0, len(page.Data))
	for _, product := range page.Data {
		data = append(data, toProductResponse(product))
	}

	respondJSON(w, http.StatusOK, pagination.Page[ProductResponse]{Data: data, Meta: page.Meta})
}

// Update handles PUT /products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, badRequest("invalid request body", err))
		return
	}

	input := service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		SKU:         req.SKU,
	}
	if req.Status != nil {
		status, err := domain.ParseProductStatus(*req.Status)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		input.Status = &status
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
