package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cnec/kviewshop/internal/domain/models"
)

// ConversionStorage описывает методы для записей о комиссии криэйтора.
type ConversionStorage interface {
	CreateConversions(ctx context.Context, conversions []*models.Conversion) error
	// CancelByOrderID переводит все конверсии заказа в CANCELLED.
	CancelByOrderID(ctx context.Context, orderID string) error
}

type conversionRepository struct {
	db *sql.DB
}

func NewConversionRepository(db *sql.DB) ConversionStorage {
	return &conversionRepository{db: db}
}

func (r *conversionRepository) CreateConversions(ctx context.Context, conversions []*models.Conversion) error {
	query := `INSERT INTO conversions (order_id, order_item_id, creator_id, conversion_type,
	          order_amount, commission_rate, commission_amount, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`
	for _, c := range conversions {
		_, err := r.db.ExecContext(ctx, query,
			c.OrderID, c.OrderItemID, c.CreatorID, c.ConversionType,
			c.OrderAmount, c.CommissionRate, c.CommissionAmount, c.Status)
		if err != nil {
			return fmt.Errorf("failed to create conversion: %w", err)
		}
	}
	return nil
}

func (r *conversionRepository) CancelByOrderID(ctx context.Context, orderID string) error {
	query := `UPDATE conversions SET status = $2 WHERE order_id = $1`
	_, err := r.db.ExecContext(ctx, query, orderID, models.ConversionStatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel conversions: %w", err)
	}
	return nil
}
