package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	security "github.com/linemk/online-store/internal/auth"
	"github.com/linemk/online-store/internal/domain/models"
	"github.com/linemk/online-store/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log          *slog.Logger
	userRepo     storage.UserStorage
	customerRepo storage.CustomerStorage
	tokenTTL     time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, customerRepo storage.CustomerStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:          log,
		userRepo:     userRepo,
		customerRepo: customerRepo,
		tokenTTL:     tokenTTL,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Login осуществляет аутентификацию пользователя.
// Если пользователь не найден, он создаётся (пароль хэшируется через bcrypt),
// и рядом с ним заводится запись покупателя — ядро заказа ожидает, что у
// каждой учетной записи есть customer. Если пользователь найден, введённый
// пароль сравнивается с сохранённым хэшем. После успешной проверки
// генерируется JWT-токен с идентификатором покупателя в claims.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Info("user not found, creating new user")
			passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				logger.Error("failed to hash password", slog.Any("error", err))
				return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
			}
			newUser := &models.User{
				Email:    email,
				PassHash: passHash,
			}
			user, err = a.userRepo.CreateUser(ctx, newUser)
			if err != nil {
				logger.Error("failed to create user", slog.Any("error", err))
				return "", fmt.Errorf("%s: failed to create user: %w", op, err)
			}
			if _, err := a.customerRepo.CreateCustomer(ctx, &models.Customer{UserID: user.ID}); err != nil {
				logger.Error("failed to create customer", slog.Any("error", err))
				return "", fmt.Errorf("%s: failed to create customer: %w", op, err)
			}
		} else {
			logger.Error("failed to get user", slog.Any("error", err))
			return "", fmt.Errorf("%s: failed to get user: %w", op, err)
		}
	} else {
		if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
			logger.Warn("invalid password")
			return "", fmt.Errorf("%s: invalid credentials: %w", op, err)
		}
	}

	customer, err := a.customerRepo.GetCustomerByUserID(ctx, user.ID)
	if err != nil {
		logger.Error("failed to get customer", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get customer: %w", op, err)
	}

	// Секрет подписи берется из переменной окружения JWT_SECRET
	token, err := security.NewToken(ctx, user, customer, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID), slog.Int64("customerID", customer.ID))
	return token, nil
}
