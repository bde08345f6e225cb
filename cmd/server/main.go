package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cnec/kviewshop/internal/app"
	"github.com/cnec/kviewshop/internal/app/handlers"
	"github.com/cnec/kviewshop/internal/config"
	"github.com/cnec/kviewshop/internal/gateway/toss"
	"github.com/cnec/kviewshop/internal/lib/logger"
	"github.com/cnec/kviewshop/internal/lib/logger/handlers/urllog"
	"github.com/cnec/kviewshop/internal/metrics"
	"github.com/cnec/kviewshop/internal/service"
	"github.com/cnec/kviewshop/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	orderRepo := storage.NewOrderRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	conversionRepo := storage.NewConversionRepository(application.DB)
	campaignRepo := storage.NewCampaignRepository(application.DB)
	visitRepo := storage.NewVisitRepository(application.DB)

	orderMetrics := metrics.NewOrderMetrics()
	tossClient := toss.New(cfg.Toss.BaseURL, cfg.Toss.SecretKey)

	prepareService := service.NewPrepareService(application.Logger, orderRepo, productRepo, cfg.Order.NumberPrefix, orderMetrics)
	paymentService := service.NewPaymentService(application.Logger, orderRepo, conversionRepo, campaignRepo, tossClient, orderMetrics)
	webhookService := service.NewWebhookService(application.Logger, orderRepo, conversionRepo, paymentService, orderMetrics)
	cancelService := service.NewCancelService(application.Logger, orderRepo, conversionRepo, productRepo, orderMetrics)
	trackService := service.NewTrackService(application.Logger, visitRepo, cfg.Tracking.CookieWindowHours)

	secureCookies := cfg.Env == logger.EnvProd

	// эндпоинты жизненного цикла заказа и оплаты
	router.Post("/api/payments/prepare", handlers.PrepareHandler(application.Logger, prepareService))
	router.Post("/api/payment/confirm", handlers.ConfirmHandler(application.Logger, paymentService))
	router.Post("/api/payments/complete", handlers.CompleteHandler(application.Logger, paymentService))
	router.Post("/api/payments/webhook", handlers.WebhookHandler(application.Logger, webhookService, cfg.PortOne.WebhookSecret))
	router.Post("/api/orders/{id}/cancel", handlers.CancelHandler(application.Logger, cancelService))
	// эндпоинт атрибуции посещений магазина
	router.Post("/api/track", handlers.TrackHandler(application.Logger, trackService, secureCookies))
	// метрики prometheus
	router.Handle("/metrics", promhttp.Handler())

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
