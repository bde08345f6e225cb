package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cnec/kviewshop/internal/domain/models"
	"github.com/cnec/kviewshop/internal/metrics"
	"github.com/cnec/kviewshop/internal/storage"
)

type CancelService interface {
	Cancel(ctx context.Context, orderID, reason string) (string, error)
}

type cancelService struct {
	log            *slog.Logger
	orderRepo      storage.OrderStorage
	conversionRepo storage.ConversionStorage
	productRepo    storage.ProductStorage
	metrics        *metrics.OrderMetrics
}

func NewCancelService(log *slog.Logger, orderRepo storage.OrderStorage, conversionRepo storage.ConversionStorage, productRepo storage.ProductStorage, m *metrics.OrderMetrics) CancelService {
	return &cancelService{
		log:            log,
		orderRepo:      orderRepo,
		conversionRepo: conversionRepo,
		productRepo:    productRepo,
		metrics:        m,
	}
}

// Cancel отменяет заказ в статусе PENDING, PAID или PREPARING: переводит его
// в CANCELLED, снимает конверсии и возвращает остатки. Возвращает номер заказа.
func (s *cancelService) Cancel(ctx context.Context, orderID, reason string) (string, error) {
	const op = "service.CancelService.Cancel"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", ErrEmptyReason
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !order.Status.Cancellable() {
		logger.Warn("order is not cancellable", slog.String("status", string(order.Status)))
		return "", fmt.Errorf("%w: current status: %s", ErrNotCancellable, order.Status)
	}

	if err := s.orderRepo.SetOrderCancelled(ctx, orderID, models.OrderStatusCancelled, time.Now(), reason); err != nil {
		logger.Error("failed to cancel order", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to cancel order: %w", op, err)
	}

	s.metrics.OrderCancelled()
	logger.Info("order cancelled", slog.String("orderNumber", order.OrderNumber), slog.String("reason", reason))

	// Снятие конверсий не критично: заказ уже отменён
	if err := s.conversionRepo.CancelByOrderID(ctx, orderID); err != nil {
		logger.Error("failed to cancel conversions", slog.Any("error", err))
	}

	// Возврат остатков, по позициям
	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		logger.Error("failed to fetch items for stock restore", slog.Any("error", err))
		return order.OrderNumber, nil
	}
	for _, item := range items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("failed to restore stock",
				slog.String("productID", item.ProductID), slog.Any("error", err))
		}
	}

	return order.OrderNumber, nil
}
