package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/online-store/internal/domain/models"
	"github.com/linemk/online-store/internal/notify"
	"github.com/linemk/online-store/internal/storage"
)

// OrderService определяет операции оформления и чтения заказов.
type OrderService interface {
	// PlaceOrder атомарно превращает корзину в заказ: снимок цен, перенос
	// позиций и очистка корзины происходят в одной транзакции
	PlaceOrder(ctx context.Context, cartID string, customerID int64) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error)
}

type orderService struct {
	log          *slog.Logger
	db           *sql.DB
	cartRepo     storage.CartStorage
	customerRepo storage.CustomerStorage
	orderRepo    storage.OrderStorage
	notifier     notify.Notifier
}

func NewOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, customerRepo storage.CustomerStorage, orderRepo storage.OrderStorage, notifier notify.Notifier) OrderService {
	return &orderService{
		log:          log,
		db:           db,
		cartRepo:     cartRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		notifier:     notifier,
	}
}

// PlaceOrder оформляет заказ по содержимому корзины.
// До транзакции выполняются локальные проверки (корзина и покупатель
// существуют), внутри транзакции корзина блокируется, позиции читаются
// вместе с текущей ценой, создается заказ со снимками цен и корзина
// очищается. Либо видны все эффекты, либо ни одного.
// Повторный вызов по уже сконвертированной корзине получает ErrEmptyCart.
func (s *orderService) PlaceOrder(ctx context.Context, cartID string, customerID int64) (*models.Order, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("cartID", cartID),
		slog.Int64("customerID", customerID),
	)
	logger.Info("starting order placement")

	// Шаги 1-2: валидации до открытия транзакции
	cart, err := s.cartRepo.GetCartByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			logger.Warn("cart not found")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to read cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %v", op, ErrDependencyUnavailable, err)
	}
	if len(cart.Items) == 0 {
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	customer, err := s.customerRepo.GetCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			logger.Warn("customer not found")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("customer lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %v", op, ErrDependencyUnavailable, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Блокировка строки корзины сериализует оформление с любыми
	// конкурентными мутациями этой же корзины
	if err := s.cartRepo.LockCartTx(ctx, tx, cartID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	// Позиции и цены читаются под блокировкой: это и есть снимок цен.
	// Пустой результат означает, что конкурентное оформление успело раньше.
	items, err := s.cartRepo.ListItemsForOrderTx(ctx, tx, cartID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to read cart items", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}
	if len(items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("cart already converted by a concurrent order")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	order, err := s.orderRepo.CreateOrderTx(ctx, tx, customer.ID, models.OrderStatusPending)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	// Одна позиция заказа на каждую позицию корзины, без слияния
	for _, item := range items {
		itemID, err := s.orderRepo.CreateOrderItemTx(ctx, tx, order.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, s.wrapTxErr(op, err)
		}
		order.Items = append(order.Items, &models.OrderItem{
			ID:        itemID,
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	// Очистка корзины в той же транзакции: заказ и остатки корзины
	// не могут существовать одновременно
	if err := s.cartRepo.ClearCartTx(ctx, tx, cartID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	// Уведомление отправляется строго после коммита; его неудача не может
	// откатить заказ и не возвращается вызывающей стороне
	if err := s.notifier.OrderCreated(ctx, order); err != nil {
		logger.Warn("order-created notification failed", slog.Int64("orderID", order.ID), slog.Any("error", err))
	}

	logger.Info("order placed", slog.Int64("orderID", order.ID), slog.Int("items", len(order.Items)))
	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrderByID"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *orderService) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error) {
	const op = "service.OrderService.GetOrdersByCustomerID"

	orders, err := s.orderRepo.GetOrdersByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) wrapTxErr(op string, err error) error {
	if storage.IsTxConflict(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrTransactionFailed, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
