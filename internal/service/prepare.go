package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cnec/kviewshop/internal/domain/models"
	"github.com/cnec/kviewshop/internal/lib/ordernum"
	"github.com/cnec/kviewshop/internal/metrics"
	"github.com/cnec/kviewshop/internal/storage"
)

// Доставка пока бесплатная; расчёт тарифа появится вместе с логистикой
const shippingFee = 0

// Сколько раз перегенерировать номер заказа при конфликте уникальности
const maxOrderNumberAttempts = 5

type PrepareService interface {
	Prepare(ctx context.Context, req PrepareOrderRequest) (*PrepareOrderResult, error)
}

// PrepareOrderRequest — проверенный входной запрос на оформление заказа.
// Форматная валидация полей выполняется в обработчике.
type PrepareOrderRequest struct {
	Items     []PrepareItem
	CreatorID string
	Buyer     PrepareBuyer
	Shipping  PrepareShipping
}

type PrepareItem struct {
	ProductID  string
	CampaignID string // пустая строка — позиция вне кампании
	Quantity   int
	UnitPrice  int64
}

type PrepareBuyer struct {
	Name  string
	Phone string
	Email string
}

type PrepareShipping struct {
	Address string
	Zipcode string
	Detail  string
	Memo    string
}

type PrepareOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	TotalAmount int64  `json:"totalAmount"`
}

type prepareService struct {
	log          *slog.Logger
	orderRepo    storage.OrderStorage
	productRepo  storage.ProductStorage
	numberPrefix string
	metrics      *metrics.OrderMetrics
}

func NewPrepareService(log *slog.Logger, orderRepo storage.OrderStorage, productRepo storage.ProductStorage, numberPrefix string, m *metrics.OrderMetrics) PrepareService {
	return &prepareService{
		log:          log,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		numberPrefix: numberPrefix,
		metrics:      m,
	}
}

// Prepare создаёт заказ в статусе PENDING вместе с позициями и резервирует
// остатки. Заказ и позиции не связаны одной транзакцией: при неудачной
// вставке позиций заказ удаляется компенсирующим действием.
func (s *prepareService) Prepare(ctx context.Context, req PrepareOrderRequest) (*PrepareOrderResult, error) {
	const op = "service.PrepareService.Prepare"
	logger := s.log.With(slog.String("op", op), slog.String("creatorID", req.CreatorID))
	logger.Info("preparing order", slog.Int("items", len(req.Items)))

	// Итоговые суммы
	var productAmount int64
	for _, item := range req.Items {
		productAmount += item.UnitPrice * int64(item.Quantity)
	}
	totalAmount := productAmount + shippingFee

	// Бренд заказа определяется по первому товару
	brandID, err := s.productRepo.GetProductBrandID(ctx, req.Items[0].ProductID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("unknown product in order", slog.String("productID", req.Items[0].ProductID))
			return nil, ErrInvalidProduct
		}
		logger.Error("failed to resolve brand", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to resolve brand: %w", op, err)
	}

	order := &models.Order{
		CreatorID:       req.CreatorID,
		BrandID:         brandID,
		BuyerName:       req.Buyer.Name,
		BuyerPhone:      req.Buyer.Phone,
		BuyerEmail:      req.Buyer.Email,
		ShippingAddress: req.Shipping.Address,
		ShippingZipcode: req.Shipping.Zipcode,
		ShippingDetail:  nullString(req.Shipping.Detail),
		ShippingMemo:    nullString(req.Shipping.Memo),
		ProductAmount:   productAmount,
		ShippingFee:     shippingFee,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
	}

	// Номер заказа уникален; при конфликте генерируем заново
	var orderID string
	for attempt := 1; ; attempt++ {
		order.OrderNumber = ordernum.Generate(s.numberPrefix, time.Now())
		orderID, err = s.orderRepo.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrOrderNumberTaken) && attempt < maxOrderNumberAttempts {
			logger.Warn("order number collision, retrying", slog.String("orderNumber", order.OrderNumber))
			continue
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	items := make([]*models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, &models.OrderItem{
			ProductID:  item.ProductID,
			CampaignID: nullString(item.CampaignID),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.UnitPrice * int64(item.Quantity),
		})
	}

	if err := s.orderRepo.CreateOrderItems(ctx, orderID, items); err != nil {
		logger.Error("failed to create order items", slog.Any("error", err))
		// Компенсирующее удаление заказа, по возможности
		if delErr := s.orderRepo.DeleteOrder(ctx, orderID); delErr != nil {
			logger.Error("failed to clean up order after item failure", slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("%s: failed to create order items: %w", op, err)
	}

	// Резервируем остатки. Ошибка здесь не отменяет заказ: остаток
	// сверяется вручную при сверке, а покупатель не должен терять оплату.
	for _, item := range req.Items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("failed to decrement stock",
				slog.String("productID", item.ProductID), slog.Any("error", err))
		}
	}

	s.metrics.OrderPrepared()
	logger.Info("order prepared",
		slog.String("orderID", orderID),
		slog.String("orderNumber", order.OrderNumber),
		slog.Int64("totalAmount", totalAmount))

	return &PrepareOrderResult{
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		TotalAmount: totalAmount,
	}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
