package notify

import (
	"context"
	"log/slog"

	"github.com/linemk/online-store/internal/domain/models"
)

// Notifier получает уведомление о созданном заказе после коммита
// транзакции. Контракт fire-and-forget: ошибка доставки логируется
// вызывающей стороной и никогда не влияет на судьбу заказа.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
}

// LogNotifier пишет событие в лог; используется локально и как заглушка,
// когда брокер не настроен.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) OrderCreated(ctx context.Context, order *models.Order) error {
	n.log.Info("order created",
		slog.Int64("orderID", order.ID),
		slog.Int64("customerID", order.CustomerID),
		slog.Int("items", len(order.Items)),
	)
	return nil
}
