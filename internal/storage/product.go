package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/online-store/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает доступ к каталогу. Со стороны ядра заказа
// каталог только читается, управление товарами живет во внешнем контуре.
type ProductStorage interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// GetProductByIDTx читает товар внутри транзакции вызывающей стороны
	GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, unit_price, inventory FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func (r *productRepository) GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT id, name, unit_price, inventory FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	product := &models.Product{}
	if err := row.Scan(&product.ID, &product.Name, &product.UnitPrice, &product.Inventory); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
