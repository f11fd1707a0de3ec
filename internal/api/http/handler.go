package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/pagination"
	"github.com/PhiQuangHuy/order-service/internal/service"
)

// OrderHandler exposes the order orchestrator over HTTP.
type OrderHandler struct {
	logger  *zap.Logger
	service *service.OrderService
}

// NewOrderHandler creates the order HTTP handler.
func NewOrderHandler(logger *zap.Logger, svc *service.OrderService) *OrderHandler {
	return &OrderHandler{
		logger:  logger,
		service: svc,
	}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, badRequest("invalid request body", err))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), service.CreateOrderInput{
		CustomerID:      req.CustomerID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

// List handles GET /orders with ?status, ?customerId, ?page, ?limit.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status domain.Status
	if raw := q.Get("status"); raw != "" {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		status = parsed
	}

	page, err := h.service.ListOrders(r.Context(), service.ListOrdersInput{
		Status:     status,
		CustomerID: q.Get("customerId"),
		Page:       queryInt(q.Get("page")),
		Limit:      queryInt(q.Get("limit")),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	data := make([]OrderResponse, 0, len(page.Data))
	for _, order := range page.Data {
		data = append(data, toOrderResponse(order))
	}

	respondJSON(w, http.StatusOK, pagination.Page[OrderResponse]{Data: data, Meta: page.Meta})
}

// Update handles PUT /orders/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, badRequest("invalid request body", err))
		return
	}

	input := service.UpdateOrderInput{
		PaymentID:       req.PaymentID,
		ShippingAddress: req.ShippingAddress,
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		input.Status = &status
	}

	order, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PUT /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, badRequest("invalid request body", err))
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func badRequest(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, msg, err)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps domain errors to HTTP. Internal details never reach the
// client; they go to the log instead.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	var kind string

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, kind = http.StatusBadRequest, "bad_input"
	case errors.Is(err, domain.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		status, kind = http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrPublishFailed):
		status, kind = http.StatusBadGateway, "publish_failed"
	default:
		status, kind = http.StatusInternalServerError, "internal"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		message = "internal server error"
	}

	respondJSON(w, status, errorResponse{Kind: kind, Message: message})
}
