package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/linemk/online-store/internal/domain/models"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartStorage описывает методы для работы с корзиной и ее позициями.
// Мутирующие методы принимают транзакцию вызывающей стороны: границы
// транзакции держит сервисный слой, хранилище только выполняет шаги.
type CartStorage interface {
	// CreateCart выдает новый токен корзины
	CreateCart(ctx context.Context) (*models.Cart, error)
	// EnsureCartTx создает корзину, если ее еще нет (первое обращение клиента)
	EnsureCartTx(ctx context.Context, tx *sql.Tx, cartID string) error
	// LockCartTx берет блокировку строки корзины; сериализует все мутации
	// корзины между собой и с оформлением заказа
	LockCartTx(ctx context.Context, tx *sql.Tx, cartID string) error
	GetCartByID(ctx context.Context, cartID string) (*models.Cart, error)
	// UpsertItemTx реализует протокол слияния: вставка новой позиции либо
	// атомарный инкремент количества одним оператором
	UpsertItemTx(ctx context.Context, tx *sql.Tx, cartID string, productID int64, quantity int) (*models.CartItem, error)
	// SetItemQuantityTx заменяет (не увеличивает) количество позиции
	SetItemQuantityTx(ctx context.Context, tx *sql.Tx, cartID string, itemID int64, quantity int) error
	DeleteItemTx(ctx context.Context, tx *sql.Tx, cartID string, itemID int64) error
	ListItemsByCartID(ctx context.Context, cartID string) ([]*models.CartItem, error)
	// ListItemsForOrderTx читает позиции вместе с текущей ценой товара под
	// блокировкой: это чтение и есть снимок цены для будущего заказа
	ListItemsForOrderTx(ctx context.Context, tx *sql.Tx, cartID string) ([]*models.CartItem, error)
	ClearCartTx(ctx context.Context, tx *sql.Tx, cartID string) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{ID: uuid.NewString()}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO carts (id, created_at) VALUES ($1, NOW()) RETURNING created_at",
		cart.ID,
	).Scan(&cart.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) EnsureCartTx(ctx context.Context, tx *sql.Tx, cartID string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO carts (id, created_at) VALUES ($1, NOW()) ON CONFLICT (id) DO NOTHING",
		cartID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure cart: %w", err)
	}
	return nil
}

func (r *cartRepository) LockCartTx(ctx context.Context, tx *sql.Tx, cartID string) error {
	var id string
	row := tx.QueryRowContext(ctx, "SELECT id FROM carts WHERE id = $1 FOR UPDATE", cartID)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartNotFound
		}
		return err
	}
	return nil
}

func (r *cartRepository) GetCartByID(ctx context.Context, cartID string) (*models.Cart, error) {
	cart := &models.Cart{}
	row := r.db.QueryRowContext(ctx, "SELECT id, created_at FROM carts WHERE id = $1", cartID)
	if err := row.Scan(&cart.ID, &cart.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	items, err := r.ListItemsByCartID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// UpsertItemTx выполняет слияние одним оператором: при конфликте по паре
// (cart_id, product_id) количество увеличивается на стороне БД, окна
// гонки «прочитал-проверил-записал» не существует.
func (r *cartRepository) UpsertItemTx(ctx context.Context, tx *sql.Tx, cartID string, productID int64, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{CartID: cartID, ProductID: productID}
	query := `INSERT INTO cart_items (cart_id, product_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (cart_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	          RETURNING id, quantity`
	err := tx.QueryRowContext(ctx, query, cartID, productID, quantity).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) SetItemQuantityTx(ctx context.Context, tx *sql.Tx, cartID string, itemID int64, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2 AND cart_id = $3",
		quantity, itemID, cartID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItemTx(ctx context.Context, tx *sql.Tx, cartID string, itemID int64) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND cart_id = $2",
		itemID, cartID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) ListItemsByCartID(ctx context.Context, cartID string) ([]*models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`
	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListItemsForOrderTx блокирует позиции корзины и соответствующие строки
// каталога, поэтому цена, прочитанная здесь, не может измениться до коммита.
func (r *cartRepository) ListItemsForOrderTx(ctx context.Context, tx *sql.Tx, cartID string) ([]*models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
		FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, cartID string) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
