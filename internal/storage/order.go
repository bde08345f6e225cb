package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cnec/kviewshop/internal/domain/models"
	"github.com/lib/pq"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNumberTaken возвращается при нарушении уникального индекса
	// по order_number; сервис в этом случае генерирует новый номер.
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// OrderStorage описывает методы для работы с заказами и их позициями.
type OrderStorage interface {
	// CreateOrder вставляет заказ в статусе PENDING и возвращает его id.
	CreateOrder(ctx context.Context, order *models.Order) (string, error)
	// CreateOrderItems вставляет позиции заказа одним батчем.
	CreateOrderItems(ctx context.Context, orderID string, items []*models.OrderItem) error
	// DeleteOrder удаляет заказ; используется только как компенсирующее
	// действие при неудачной вставке позиций.
	DeleteOrder(ctx context.Context, id string) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrderByTransactionID ищет заказ по pg_transaction_id (фолбэк вебхука).
	GetOrderByTransactionID(ctx context.Context, txID string) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]*models.OrderItem, error)
	// MarkOrderPaid переводит заказ PENDING -> PAID. Возвращает false, если
	// заказ уже не в PENDING — так повторные вызовы становятся безопасными.
	MarkOrderPaid(ctx context.Context, id string, paidAt time.Time, pgTransactionID, pgProvider, paymentMethod string) (bool, error)
	// SetOrderCancelled переводит заказ в CANCELLED или REFUNDED.
	SetOrderCancelled(ctx context.Context, id string, status models.OrderStatus, cancelledAt time.Time, reason string) error
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, creator_id, brand_id, buyer_name, buyer_phone, buyer_email,
	shipping_address, shipping_zipcode, shipping_detail, shipping_memo,
	product_amount, shipping_fee, total_amount, status,
	payment_method, pg_transaction_id, pg_provider, paid_at, cancelled_at, cancel_reason,
	created_at, updated_at`

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	query := `INSERT INTO orders (order_number, creator_id, brand_id, buyer_name, buyer_phone, buyer_email,
	          shipping_address, shipping_zipcode, shipping_detail, shipping_memo,
	          product_amount, shipping_fee, total_amount, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	          RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		order.OrderNumber, order.CreatorID, order.BrandID,
		order.BuyerName, order.BuyerPhone, order.BuyerEmail,
		order.ShippingAddress, order.ShippingZipcode, order.ShippingDetail, order.ShippingMemo,
		order.ProductAmount, order.ShippingFee, order.TotalAmount, order.Status,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return "", ErrOrderNumberTaken
			}
		}
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, orderID string, items []*models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, campaign_id, quantity, unit_price, total_price)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range items {
		_, err := r.db.ExecContext(ctx, query,
			orderID, item.ProductID, item.CampaignID, item.Quantity, item.UnitPrice, item.TotalPrice)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *orderRepository) GetOrderByTransactionID(ctx context.Context, txID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE pg_transaction_id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, txID))
}

func (r *orderRepository) scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.CreatorID, &order.BrandID,
		&order.BuyerName, &order.BuyerPhone, &order.BuyerEmail,
		&order.ShippingAddress, &order.ShippingZipcode, &order.ShippingDetail, &order.ShippingMemo,
		&order.ProductAmount, &order.ShippingFee, &order.TotalAmount, &order.Status,
		&order.PaymentMethod, &order.PgTransactionID, &order.PgProvider,
		&order.PaidAt, &order.CancelledAt, &order.CancelReason,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, campaign_id, quantity, unit_price, total_price
	          FROM order_items WHERE order_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.CampaignID,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkOrderPaid — единая точка перехода PENDING -> PAID.
// Условие status = 'PENDING' в самом запросе защищает от двойной обработки
// при конкурентных вызовах confirm/complete/webhook.
func (r *orderRepository) MarkOrderPaid(ctx context.Context, id string, paidAt time.Time, pgTransactionID, pgProvider, paymentMethod string) (bool, error) {
	query := `UPDATE orders
	          SET status = $2, paid_at = $3, pg_transaction_id = $4, pg_provider = $5, payment_method = $6, updated_at = NOW()
	          WHERE id = $1 AND status = $7`
	res, err := r.db.ExecContext(ctx, query,
		id, models.OrderStatusPaid, paidAt, pgTransactionID, pgProvider, paymentMethod, models.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *orderRepository) SetOrderCancelled(ctx context.Context, id string, status models.OrderStatus, cancelledAt time.Time, reason string) error {
	query := `UPDATE orders
	          SET status = $2, cancelled_at = $3, cancel_reason = $4, updated_at = NOW()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, cancelledAt, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
