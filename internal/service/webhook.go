package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cnec/kviewshop/internal/domain/models"
	"github.com/cnec/kviewshop/internal/gateway/portone"
	"github.com/cnec/kviewshop/internal/metrics"
	"github.com/cnec/kviewshop/internal/storage"
)

// MapEventStatus переводит тип события PortOne в статус заказа.
// Неизвестные события возвращают пустой статус и подтверждаются без обработки.
func MapEventStatus(eventType string) models.OrderStatus {
	switch eventType {
	case "payment.paid", "payment.confirmed":
		return models.OrderStatusPaid
	case "payment.cancelled", "payment.failed":
		return models.OrderStatusCancelled
	case "payment.refunded":
		return models.OrderStatusRefunded
	default:
		return ""
	}
}

// WebhookResult — внутренний исход обработки; наружу вебхук всегда отвечает 200
type WebhookResult struct {
	Processed   bool
	Reason      string
	OrderNumber string
	NewStatus   models.OrderStatus
}

type WebhookService interface {
	Process(ctx context.Context, payload portone.WebhookPayload) WebhookResult
}

type webhookService struct {
	log            *slog.Logger
	orderRepo      storage.OrderStorage
	conversionRepo storage.ConversionStorage
	payments       PaymentService
	metrics        *metrics.OrderMetrics
}

func NewWebhookService(log *slog.Logger, orderRepo storage.OrderStorage, conversionRepo storage.ConversionStorage, payments PaymentService, m *metrics.OrderMetrics) WebhookService {
	return &webhookService{
		log:            log,
		orderRepo:      orderRepo,
		conversionRepo: conversionRepo,
		payments:       payments,
		metrics:        m,
	}
}

// Process применяет событие шлюза к заказу. Любой внутренний сбой лишь
// логируется и превращается в processed=false: ошибка в ответе спровоцировала
// бы у шлюза шторм ретраев.
func (s *webhookService) Process(ctx context.Context, payload portone.WebhookPayload) WebhookResult {
	const op = "service.WebhookService.Process"
	logger := s.log.With(slog.String("op", op),
		slog.String("event", payload.Type),
		slog.String("paymentID", payload.Data.PaymentID))

	s.metrics.WebhookEvent(payload.Type)

	newStatus := MapEventStatus(payload.Type)
	if newStatus == "" {
		logger.Info("unrecognized webhook event type, acknowledging without processing")
		return WebhookResult{Processed: false}
	}

	// Ищем заказ: по orderId из события, иначе по pg_transaction_id
	var order *models.Order
	var err error
	if payload.Data.OrderID != "" {
		order, err = s.orderRepo.GetOrderByID(ctx, payload.Data.OrderID)
	} else {
		order, err = s.orderRepo.GetOrderByTransactionID(ctx, payload.Data.PaymentID)
	}
	if err != nil {
		logger.Error("order not found for webhook", slog.Any("error", err))
		return WebhookResult{Processed: false, Reason: "Order not found"}
	}

	switch newStatus {
	case models.OrderStatusPaid:
		verified := VerifiedPayment{
			TransactionID: payload.Data.PaymentID,
			Provider:      "portone",
			Method:        "CARD",
			PaidAt:        time.Now(),
		}
		if err := s.payments.MarkPaid(ctx, order, verified); err != nil {
			if errors.Is(err, ErrAlreadyProcessed) {
				logger.Info("webhook replay: order already paid")
				return WebhookResult{Processed: false, Reason: "Already processed", OrderNumber: order.OrderNumber}
			}
			logger.Error("failed to apply paid event", slog.Any("error", err))
			return WebhookResult{Processed: false, Reason: "Failed to update order"}
		}

	case models.OrderStatusCancelled, models.OrderStatusRefunded:
		cancelledAt := parseCancelledAt(payload.Data.CancelledAt)
		reason := payload.Data.CancelReason
		if reason == "" {
			if newStatus == models.OrderStatusRefunded {
				reason = "Refunded via payment gateway"
			} else {
				reason = "Cancelled via payment gateway"
			}
		}

		if err := s.orderRepo.SetOrderCancelled(ctx, order.ID, newStatus, cancelledAt, reason); err != nil {
			logger.Error("failed to apply cancellation event", slog.Any("error", err))
			return WebhookResult{Processed: false, Reason: "Failed to update order"}
		}
		if err := s.conversionRepo.CancelByOrderID(ctx, order.ID); err != nil {
			logger.Error("failed to cancel conversions", slog.Any("error", err))
		}
	}

	logger.Info("webhook processed",
		slog.String("orderNumber", order.OrderNumber),
		slog.String("newStatus", string(newStatus)))

	return WebhookResult{Processed: true, OrderNumber: order.OrderNumber, NewStatus: newStatus}
}

func parseCancelledAt(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Now()
}
