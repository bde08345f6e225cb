package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cnec/kviewshop/internal/domain/models"
)

// VisitStorage — запись посещений магазина для атрибуции конверсий.
type VisitStorage interface {
	CreateVisit(ctx context.Context, visit *models.ShopVisit) error
}

type visitRepository struct {
	db *sql.DB
}

func NewVisitRepository(db *sql.DB) VisitStorage {
	return &visitRepository{db: db}
}

func (r *visitRepository) CreateVisit(ctx context.Context, visit *models.ShopVisit) error {
	query := `INSERT INTO shop_visits (creator_id, visitor_id, ip_address, user_agent, referer, visited_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		visit.CreatorID, visit.VisitorID, visit.IPAddress, visit.UserAgent, visit.Referer,
		visit.VisitedAt, visit.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create shop visit: %w", err)
	}
	return nil
}
