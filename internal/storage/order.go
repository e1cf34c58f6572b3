package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/online-store/internal/domain/models"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
// Вставки выполняются внутри транзакции оформления заказа.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ в начальном статусе и возвращает его id и время создания
	CreateOrderTx(ctx context.Context, tx *sql.Tx, customerID int64, status string) (*models.Order, error)
	// CreateOrderItemTx вставляет позицию заказа со снимком цены; позиции не сливаются
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, orderID int64, productID int64, quantity int, unitPrice decimal.Decimal) (int64, error)
	// GetOrderByID возвращает заказ вместе с позициями
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, customerID int64, status string) (*models.Order, error) {
	order := &models.Order{CustomerID: customerID, Status: status}
	query := `INSERT INTO orders (customer_id, status, created_at)
	          VALUES ($1, $2, NOW()) RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, customerID, status).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, orderID int64, productID int64, quantity int, unitPrice decimal.Decimal) (int64, error) {
	var id int64
	query := `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err := tx.QueryRowContext(ctx, query, orderID, productID, quantity, unitPrice).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order item: %w", err)
	}
	return id, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, customer_id, status, created_at FROM orders WHERE id = $1", id)
	if err := row.Scan(&order.ID, &order.CustomerID, &order.Status, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error) {
	query := `
		SELECT id, customer_id, status, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
