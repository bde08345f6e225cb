package models

import "time"

type ConversionType string

const (
	ConversionTypeDirect   ConversionType = "DIRECT"
	ConversionTypeIndirect ConversionType = "INDIRECT"
)

type ConversionStatus string

const (
	ConversionStatusPending   ConversionStatus = "PENDING"
	ConversionStatusConfirmed ConversionStatus = "CONFIRMED"
	ConversionStatusCancelled ConversionStatus = "CANCELLED"
)

// DefaultCommissionRate — комиссия по умолчанию для прямых продаж, если у позиции нет кампании
const DefaultCommissionRate = 0.10

// Conversion — запись о комиссии криэйтора за оплаченную позицию заказа.
// Инвариант: CommissionAmount == round(OrderAmount * CommissionRate).
type Conversion struct {
	ID               string           `json:"id"`
	OrderID          string           `json:"order_id"`
	OrderItemID      string           `json:"order_item_id"`
	CreatorID        string           `json:"creator_id"`
	ConversionType   ConversionType   `json:"conversion_type"`
	OrderAmount      int64            `json:"order_amount"`    // копия total_price позиции
	CommissionRate   float64          `json:"commission_rate"` // доля, напр. 0.25 = 25%
	CommissionAmount int64            `json:"commission_amount"`
	Status           ConversionStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}
