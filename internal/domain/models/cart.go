package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart представляет анонимную корзину, идентифицируемую только токеном (uuid).
// Владельца у корзины нет, токен выдается при первом обращении клиента.
type Cart struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []*CartItem `json:"items,omitempty"`
}

// CartItem представляет позицию корзины.
// Инвариант: на пару (корзина, товар) существует не более одной позиции,
// конкурентные добавления сливаются в одну строку атомарным upsert-ом.
type CartItem struct {
	ID        int64  `json:"id"`
	CartID    string `json:"cart_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`

	// Заполняются через JOIN с таблицей products при чтении корзины
	ProductName string          `json:"product_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
