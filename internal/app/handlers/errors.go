package handlers

import (
	"errors"
	"net/http"

	"github.com/linemk/online-store/internal/service"
	"github.com/linemk/online-store/internal/storage"
)

// statusForError переводит вид ошибки сервисного слоя в HTTP-статус.
// Клиент ветвится по статусу: 404 — «не существует», 409 — конфликт,
// который можно повторить, 503 — «не смогли проверить».
func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrCartNotFound),
		errors.Is(err, storage.ErrCartItemNotFound),
		errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrCustomerNotFound),
		errors.Is(err, storage.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTransactionFailed):
		return http.StatusConflict
	case errors.Is(err, service.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
