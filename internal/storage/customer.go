package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/online-store/internal/domain/models"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerStorage описывает методы для работы с покупателями.
// Ядро заказа покупателей только читает, создание нужно сервису аутентификации.
type CustomerStorage interface {
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) CustomerStorage {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, phone_number, birth_date FROM customers WHERE id = $1", id)
	if err := row.Scan(&customer.ID, &customer.UserID, &customer.PhoneNumber, &customer.BirthDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (r *customerRepository) GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	customer := &models.Customer{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, phone_number, birth_date FROM customers WHERE user_id = $1", userID)
	if err := row.Scan(&customer.ID, &customer.UserID, &customer.PhoneNumber, &customer.BirthDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (r *customerRepository) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO customers (user_id, phone_number, birth_date) VALUES ($1, $2, $3) RETURNING id",
		customer.UserID, customer.PhoneNumber, customer.BirthDate,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	customer.ID = id
	return customer, nil
}
