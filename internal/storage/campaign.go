package storage

import (
	"context"
	"database/sql"
	"errors"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignStorage — доступ ядра к кампаниям только на чтение ставки комиссии.
type CampaignStorage interface {
	GetCommissionRate(ctx context.Context, campaignID string) (float64, error)
}

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) CampaignStorage {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) GetCommissionRate(ctx context.Context, campaignID string) (float64, error) {
	var rate float64
	row := r.db.QueryRowContext(ctx, `SELECT commission_rate FROM campaigns WHERE id = $1`, campaignID)
	if err := row.Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCampaignNotFound
		}
		return 0, err
	}
	return rate, nil
}
