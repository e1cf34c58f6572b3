package models

import "time"

// Customer представляет покупателя, привязанного к учетной записи.
// Создается и управляется вне ядра заказа, здесь только читается.
type Customer struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	PhoneNumber string     `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
}
