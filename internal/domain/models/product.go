package models

import "github.com/shopspring/decimal"

// Product представляет товар каталога. Каталог для ядра заказа доступен только на чтение
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"` // Текущая цена за единицу
	Inventory int             `json:"inventory"`
}
