package models

import (
	"database/sql"
	"time"
)

// OrderStatus — статус заказа, хранится строкой
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// CancellableStatuses — статусы, из которых заказ можно отменить
var CancellableStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusPreparing,
}

// Cancellable сообщает, допускает ли статус отмену заказа
func (s OrderStatus) Cancellable() bool {
	for _, cs := range CancellableStatuses {
		if s == cs {
			return true
		}
	}
	return false
}

// Order представляет покупку одного покупателя в магазине криэйтора.
// Суммы хранятся в целых KRW; инвариант TotalAmount == ProductAmount + ShippingFee.
type Order struct {
	ID              string         `json:"id"`
	OrderNumber     string         `json:"order_number"` // формат CNEC-YYYYMMDD-NNNNN
	CreatorID       string         `json:"creator_id"`
	BrandID         string         `json:"brand_id"`
	BuyerName       string         `json:"buyer_name"`
	BuyerPhone      string         `json:"buyer_phone"`
	BuyerEmail      string         `json:"buyer_email"`
	ShippingAddress string         `json:"shipping_address"`
	ShippingZipcode string         `json:"shipping_zipcode"`
	ShippingDetail  sql.NullString `json:"shipping_detail"`
	ShippingMemo    sql.NullString `json:"shipping_memo"`
	ProductAmount   int64          `json:"product_amount"`
	ShippingFee     int64          `json:"shipping_fee"`
	TotalAmount     int64          `json:"total_amount"`
	Status          OrderStatus    `json:"status"`
	PaymentMethod   sql.NullString `json:"payment_method"`
	PgTransactionID sql.NullString `json:"pg_transaction_id"`
	PgProvider      sql.NullString `json:"pg_provider"`
	PaidAt          sql.NullTime   `json:"paid_at"`
	CancelledAt     sql.NullTime   `json:"cancelled_at"`
	CancelReason    sql.NullString `json:"cancel_reason"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// OrderItem — одна позиция заказа; создаётся вместе с заказом и не изменяется
type OrderItem struct {
	ID         string         `json:"id"`
	OrderID    string         `json:"order_id"`
	ProductID  string         `json:"product_id"`
	CampaignID sql.NullString `json:"campaign_id"`
	Quantity   int            `json:"quantity"`    // > 0
	UnitPrice  int64          `json:"unit_price"`  // >= 0
	TotalPrice int64          `json:"total_price"` // unit_price * quantity
}
