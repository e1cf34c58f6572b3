package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/online-store/internal/auth/jwtmiddleware"
	"github.com/linemk/online-store/internal/service"
)

// PlaceOrderRequest представляет входной JSON для оформления заказа.
type PlaceOrderRequest struct {
	CartID string `json:"cart_id" validate:"required,uuid"`
}

// PlaceOrderHandler обрабатывает запрос POST /api/orders.
// Покупатель берется из контекста, установленного JWT middleware:
// границу авторизации держит внешний контур, ядро доверяет customer_id.
func PlaceOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		var req PlaceOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		customerID, ok := jwtmiddleware.CustomerFromContext(r.Context())
		if !ok {
			logger.Error("customerID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		order, err := orderService.PlaceOrder(r.Context(), req.CartID, customerID)
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(order); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// GetOrderHandler обрабатывает запрос GET /api/orders/{orderID}.
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		order, err := orderService.GetOrderByID(r.Context(), orderID)
		if err != nil {
			logger.Error("failed to get order", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(order); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ListOrdersHandler обрабатывает запрос GET /api/orders: заказы текущего покупателя.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		customerID, ok := jwtmiddleware.CustomerFromContext(r.Context())
		if !ok {
			logger.Error("customerID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.GetOrdersByCustomerID(r.Context(), customerID)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(orders); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
