package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/online-store/internal/app"
	"github.com/linemk/online-store/internal/app/handlers"
	"github.com/linemk/online-store/internal/auth/jwtmiddleware"
	"github.com/linemk/online-store/internal/config"
	"github.com/linemk/online-store/internal/lib/logger"
	"github.com/linemk/online-store/internal/lib/logger/handlers/urllog"
	"github.com/linemk/online-store/internal/notify"
	notifykafka "github.com/linemk/online-store/internal/notify/kafka"
	"github.com/linemk/online-store/internal/service"
	"github.com/linemk/online-store/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	customerRepo := storage.NewCustomerRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	// уведомления о созданных заказах: kafka, если настроена, иначе лог
	var notifier notify.Notifier
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		notifier = notifykafka.NewNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info("order events will be published to kafka", slog.String("topic", cfg.Kafka.Topic))
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	authService := service.NewAuthService(application.Logger, userRepo, customerRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	cartService := service.NewCartService(application.Logger, application.DB, cartRepo, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, cartRepo, customerRepo, orderRepo, notifier)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))

	// корзина анонимная: идентифицируется только токеном, авторизация не нужна
	router.Post("/api/carts", handlers.CreateCartHandler(application.Logger, cartService))
	router.Get("/api/carts/{cartID}", handlers.GetCartHandler(application.Logger, cartService))
	router.Post("/api/carts/{cartID}/items", handlers.AddItemHandler(application.Logger, cartService))
	router.Patch("/api/carts/{cartID}/items/{itemID}", handlers.UpdateItemHandler(application.Logger, cartService))
	router.Delete("/api/carts/{cartID}/items/{itemID}", handlers.RemoveItemHandler(application.Logger, cartService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		// эндпоинт для оформления заказа по содержимому корзины
		r.Post("/api/orders", handlers.PlaceOrderHandler(application.Logger, orderService))
		// эндпоинты для чтения заказов покупателя
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/{orderID}", handlers.GetOrderHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
