package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cnec/kviewshop/internal/domain/models"
	"github.com/cnec/kviewshop/internal/gateway/toss"
	"github.com/cnec/kviewshop/internal/metrics"
	"github.com/cnec/kviewshop/internal/storage"
)

// TossConfirmer — подтверждение платежа на стороне шлюза.
type TossConfirmer interface {
	ConfirmPayment(ctx context.Context, req toss.ConfirmRequest) (*toss.Payment, error)
}

// VerifiedPayment — платёж, уже проверенный внешней стороной
// (ответом шлюза или подписанным вебхуком).
type VerifiedPayment struct {
	TransactionID string
	Provider      string
	Method        string
	PaidAt        time.Time
}

// PaymentService объединяет оба пути "оплата завершена" — синхронный колбэк
// клиента и вебхук — в один идемпотентный переход MarkPaid.
type PaymentService interface {
	// Confirm — синхронное подтверждение через Toss после успеха платёжного SDK.
	Confirm(ctx context.Context, orderID, paymentKey string, amount int64) (*toss.Payment, error)
	// Complete — переход PENDING -> PAID по внешне проверенному платежу + атрибуция.
	Complete(ctx context.Context, orderID, paymentID, pgProvider string) (string, error)
	// MarkPaid — общий переход; повторные вызовы возвращают ErrAlreadyProcessed.
	MarkPaid(ctx context.Context, order *models.Order, verified VerifiedPayment) error
}

type paymentService struct {
	log            *slog.Logger
	orderRepo      storage.OrderStorage
	conversionRepo storage.ConversionStorage
	campaignRepo   storage.CampaignStorage
	gateway        TossConfirmer
	metrics        *metrics.OrderMetrics
}

func NewPaymentService(log *slog.Logger, orderRepo storage.OrderStorage, conversionRepo storage.ConversionStorage, campaignRepo storage.CampaignStorage, gateway TossConfirmer, m *metrics.OrderMetrics) PaymentService {
	return &paymentService{
		log:            log,
		orderRepo:      orderRepo,
		conversionRepo: conversionRepo,
		campaignRepo:   campaignRepo,
		gateway:        gateway,
		metrics:        m,
	}
}

func (s *paymentService) Confirm(ctx context.Context, orderID, paymentKey string, amount int64) (*toss.Payment, error) {
	const op = "service.PaymentService.Confirm"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))
	logger.Info("confirming payment with gateway")

	payment, err := s.gateway.ConfirmPayment(ctx, toss.ConfirmRequest{
		OrderID:    orderID,
		PaymentKey: paymentKey,
		Amount:     amount,
	})
	if err != nil {
		// Отказ шлюза пробрасывается наверх как есть, заказ не трогаем
		logger.Warn("gateway rejected confirmation", slog.Any("error", err))
		return nil, err
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("order missing after gateway confirm", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Сумма, подтверждённая шлюзом, обязана совпасть с суммой заказа
	if payment.TotalAmount != order.TotalAmount {
		logger.Error("confirmed amount mismatch",
			slog.Int64("confirmed", payment.TotalAmount),
			slog.Int64("orderTotal", order.TotalAmount))
		return nil, ErrAmountMismatch
	}

	verified := VerifiedPayment{
		TransactionID: payment.PaymentKey,
		Provider:      "toss",
		Method:        payment.Method,
		PaidAt:        parseApprovedAt(payment.ApprovedAt),
	}
	if err := s.MarkPaid(ctx, order, verified); err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			// Повторный колбэк клиента: деньги списаны один раз, отвечаем успехом
			logger.Warn("order already paid, treating confirm as idempotent replay")
			return payment, nil
		}
		return nil, err
	}

	return payment, nil
}

func (s *paymentService) Complete(ctx context.Context, orderID, paymentID, pgProvider string) (string, error) {
	const op = "service.PaymentService.Complete"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	if strings.TrimSpace(paymentID) == "" {
		return "", ErrInvalidPaymentID
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if order.Status != models.OrderStatusPending {
		logger.Warn("order is not pending", slog.String("status", string(order.Status)))
		return "", fmt.Errorf("%w: current status: %s", ErrOrderNotPending, order.Status)
	}

	if pgProvider == "" {
		pgProvider = "portone"
	}
	verified := VerifiedPayment{
		TransactionID: paymentID,
		Provider:      pgProvider,
		Method:        "CARD",
		PaidAt:        time.Now(),
	}
	if err := s.MarkPaid(ctx, order, verified); err != nil {
		return "", err
	}

	return order.OrderNumber, nil
}

// MarkPaid переводит заказ в PAID и создаёт по одной конверсии на позицию.
// Защита от повторов — условие status = PENDING в самом UPDATE, поэтому
// гонка confirm/complete/webhook безопасна: выигрывает ровно один вызов.
func (s *paymentService) MarkPaid(ctx context.Context, order *models.Order, verified VerifiedPayment) error {
	const op = "service.PaymentService.MarkPaid"
	logger := s.log.With(slog.String("op", op),
		slog.String("orderID", order.ID),
		slog.String("orderNumber", order.OrderNumber))

	ok, err := s.orderRepo.MarkOrderPaid(ctx, order.ID, verified.PaidAt,
		verified.TransactionID, verified.Provider, verified.Method)
	if err != nil {
		logger.Error("failed to mark order paid", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}

	s.metrics.PaymentCompleted()
	logger.Info("order marked as paid", slog.String("pgTransactionID", verified.TransactionID))

	// Атрибуция. Ошибки здесь не откатывают оплату: корректность платежа
	// важнее корректности комиссии, недостающие записи досоздаёт сверка.
	if err := s.createConversions(ctx, order); err != nil {
		logger.Error("failed to create conversion records", slog.Any("error", err))
	}

	return nil
}

func (s *paymentService) createConversions(ctx context.Context, order *models.Order) error {
	items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch order items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	conversions := make([]*models.Conversion, 0, len(items))
	for _, item := range items {
		rate := models.DefaultCommissionRate
		if item.CampaignID.Valid {
			campaignRate, err := s.campaignRepo.GetCommissionRate(ctx, item.CampaignID.String)
			if err == nil {
				rate = campaignRate
			} else if !errors.Is(err, storage.ErrCampaignNotFound) {
				s.log.Error("failed to load campaign rate",
					slog.String("campaignID", item.CampaignID.String), slog.Any("error", err))
			}
		}

		conversions = append(conversions, &models.Conversion{
			OrderID:          order.ID,
			OrderItemID:      item.ID,
			CreatorID:        order.CreatorID,
			ConversionType:   models.ConversionTypeDirect,
			OrderAmount:      item.TotalPrice,
			CommissionRate:   rate,
			CommissionAmount: int64(math.Round(float64(item.TotalPrice) * rate)),
			Status:           models.ConversionStatusPending,
		})
	}

	return s.conversionRepo.CreateConversions(ctx, conversions)
}

// parseApprovedAt разбирает временную метку шлюза; при ошибке берём текущее время
func parseApprovedAt(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Now()
}
