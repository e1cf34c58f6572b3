package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/online-store/internal/domain/models"
	"github.com/linemk/online-store/internal/storage"
)

// CartService определяет операции над корзиной.
type CartService interface {
	// AddItem добавляет товар в корзину; повторное добавление того же товара
	// увеличивает количество существующей позиции (протокол слияния)
	AddItem(ctx context.Context, cartID string, productID int64, quantity int) (*models.CartItem, error)
	// UpdateItemQuantity заменяет количество позиции на указанное
	UpdateItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) error
	// RemoveItem удаляет позицию; удаление отсутствующей позиции — ошибка ErrCartItemNotFound
	RemoveItem(ctx context.Context, cartID string, itemID int64) error
	CreateCart(ctx context.Context) (*models.Cart, error)
	GetCart(ctx context.Context, cartID string) (*models.Cart, error)
}

type cartService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem выполняет слияние в рамках одной транзакции: корзина создается
// при первом обращении, строка корзины блокируется (взаимное исключение с
// оформлением заказа), затем количество сливается атомарным upsert-ом.
func (s *cartService) AddItem(ctx context.Context, cartID string, productID int64, quantity int) (*models.CartItem, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("cartID", cartID),
		slog.Int64("productID", productID),
		slog.Int("quantity", quantity),
	)

	if quantity <= 0 {
		logger.Warn("rejected non-positive quantity")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Корзина анонимная и создается неявно при первом обращении
	if err := s.cartRepo.EnsureCartTx(ctx, tx, cartID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to ensure cart", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	if err := s.cartRepo.LockCartTx(ctx, tx, cartID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	// Товар должен существовать в каталоге; читаем в той же транзакции
	if _, err := s.productRepo.GetProductByIDTx(ctx, tx, productID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("product not found")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("catalog lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %v", op, ErrDependencyUnavailable, err)
	}

	item, err := s.cartRepo.UpsertItemTx(ctx, tx, cartID, productID, quantity)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to merge cart item", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, s.wrapTxErr(op, err)
	}

	logger.Info("item merged into cart", slog.Int64("itemID", item.ID), slog.Int("mergedQuantity", item.Quantity))
	return item, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) error {
	const op = "service.CartService.UpdateItemQuantity"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("cartID", cartID),
		slog.Int64("itemID", itemID),
		slog.Int("quantity", quantity),
	)

	if quantity <= 0 {
		logger.Warn("rejected non-positive quantity")
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.cartRepo.LockCartTx(ctx, tx, cartID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return s.wrapTxErr(op, err)
	}

	if err := s.cartRepo.SetItemQuantityTx(ctx, tx, cartID, itemID, quantity); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update item quantity", slog.Any("error", err))
		return s.wrapTxErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return s.wrapTxErr(op, err)
	}

	logger.Info("item quantity updated")
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID string, itemID int64) error {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("cartID", cartID),
		slog.Int64("itemID", itemID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.cartRepo.LockCartTx(ctx, tx, cartID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return s.wrapTxErr(op, err)
	}

	if err := s.cartRepo.DeleteItemTx(ctx, tx, cartID, itemID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to delete item", slog.Any("error", err))
		return s.wrapTxErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return s.wrapTxErr(op, err)
	}

	logger.Info("item removed from cart")
	return nil
}

func (s *cartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	const op = "service.CartService.CreateCart"

	cart, err := s.cartRepo.CreateCart(ctx)
	if err != nil {
		s.log.Error("failed to create cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("cart created", slog.String("op", op), slog.String("cartID", cart.ID))
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	const op = "service.CartService.GetCart"

	cart, err := s.cartRepo.GetCartByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

// wrapTxErr переводит конфликт конкурентного доступа в ErrTransactionFailed,
// остальные ошибки оборачивает как есть, сохраняя цепочку для errors.Is.
func (s *cartService) wrapTxErr(op string, err error) error {
	if storage.IsTxConflict(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrTransactionFailed, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
