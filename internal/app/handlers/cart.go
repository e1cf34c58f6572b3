package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/online-store/internal/service"
)

// AddItemRequest представляет входной JSON для добавления товара в корзину.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest представляет входной JSON для замены количества позиции.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// CreateCartHandler обрабатывает запрос POST /api/carts: выдает токен новой корзины.
func CreateCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateCartHandler"
		logger := log.With(slog.String("op", op))

		cart, err := cartService.CreateCart(r.Context())
		if err != nil {
			logger.Error("failed to create cart", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// GetCartHandler обрабатывает запрос GET /api/carts/{cartID}.
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		cartID := chi.URLParam(r, "cartID")
		if cartID == "" {
			http.Error(w, "cartID parameter is required", http.StatusBadRequest)
			return
		}

		cart, err := cartService.GetCart(r.Context(), cartID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// AddItemHandler обрабатывает запрос POST /api/carts/{cartID}/items.
// Повторное добавление того же товара сливается в одну позицию.
func AddItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddItemHandler"
		logger := log.With(slog.String("op", op))

		cartID := chi.URLParam(r, "cartID")
		if cartID == "" {
			http.Error(w, "cartID parameter is required", http.StatusBadRequest)
			return
		}

		var req AddItemRequest
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

		item, err := cartService.AddItem(r.Context(), cartID, req.ProductID, req.Quantity)
		if err != nil {
			logger.Error("failed to add item", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(item); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// UpdateItemHandler обрабатывает запрос PATCH /api/carts/{cartID}/items/{itemID}.
func UpdateItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateItemHandler"
		logger := log.With(slog.String("op", op))

		cartID := chi.URLParam(r, "cartID")
		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
		if cartID == "" || err != nil {
			http.Error(w, "invalid cart or item id", http.StatusBadRequest)
			return
		}

		var req UpdateItemRequest
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

		if err := cartService.UpdateItemQuantity(r.Context(), cartID, itemID, req.Quantity); err != nil {
			logger.Error("failed to update item", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveItemHandler обрабатывает запрос DELETE /api/carts/{cartID}/items/{itemID}.
// Удаление отсутствующей позиции возвращает 404.
func RemoveItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveItemHandler"
		logger := log.With(slog.String("op", op))

		cartID := chi.URLParam(r, "cartID")
		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
		if cartID == "" || err != nil {
			http.Error(w, "invalid cart or item id", http.StatusBadRequest)
			return
		}

		if err := cartService.RemoveItem(r.Context(), cartID, itemID); err != nil {
			logger.Error("failed to remove item", slog.Any("error", err))
			http.Error(w, err.Error(), statusForError(err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
