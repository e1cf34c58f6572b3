package service

import "errors"

// Ошибки уровня сервиса, по которым вызывающая сторона ветвится через errors.Is.
var (
	// ErrInvalidQuantity — количество не является положительным целым
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrEmptyCart — в корзине нет ни одной позиции
	ErrEmptyCart = errors.New("cart is empty")
	// ErrTransactionFailed — конфликт конкурентного доступа; повтор запроса на усмотрение клиента
	ErrTransactionFailed = errors.New("transaction failed due to a concurrent conflict")
	// ErrDependencyUnavailable — внешний справочник не ответил; отличается от «не найдено»
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
