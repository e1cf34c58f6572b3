package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/linemk/online-store/internal/domain/models"
	"github.com/linemk/online-store/internal/notify"
	kafkaGo "github.com/segmentio/kafka-go"
)

// orderCreatedEvent — полезная нагрузка события order_created.
type orderCreatedEvent struct {
	Event      string    `json:"event"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type kafkaNotifier struct {
	brokers []string
	topic   string
}

var _ notify.Notifier = (*kafkaNotifier)(nil)

// NewNotifier создает уведомитель, публикующий события заказов в Kafka.
func NewNotifier(brokers []string, topic string) notify.Notifier {
	return &kafkaNotifier{brokers: brokers, topic: topic}
}

func (k *kafkaNotifier) OrderCreated(ctx context.Context, order *models.Order) error {
	w := &kafkaGo.Writer{
		Addr:     kafkaGo.TCP(k.brokers...),
		Topic:    k.topic,
		Balancer: &kafkaGo.LeastBytes{},
	}
	defer w.Close()

	payload, err := json.Marshal(orderCreatedEvent{
		Event:      "order_created",
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		CreatedAt:  order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Ключ — id заказа, чтобы события одного заказа попадали в одну партицию
	return w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: payload,
	})
}
