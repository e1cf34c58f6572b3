package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа. Ядро создает заказ только в статусе pending,
// дальнейшие переходы выполняются привилегированными акторами извне.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order представляет заказ. После создания неизменяем, кроме поля Status
type Order struct {
	ID         int64        `json:"id"`
	CustomerID int64        `json:"customer_id"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	Items      []*OrderItem `json:"items,omitempty"`
}

// OrderItem представляет позицию заказа. UnitPrice — снимок цены на момент
// оформления, последующие изменения цены в каталоге его не затрагивают.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Имя товара; заполняется через JOIN с таблицей products
	ProductName string `json:"product_name,omitempty"`
}
