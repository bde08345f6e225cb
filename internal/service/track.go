package service

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/cnec/kviewshop/internal/domain/models"
	"github.com/cnec/kviewshop/internal/storage"
	"github.com/google/uuid"
)

type TrackService interface {
	Track(ctx context.Context, req TrackRequest) *TrackResult
}

// TrackRequest — визит в магазин криэйтора; VisitorID берётся из куки,
// если посетитель уже известен.
type TrackRequest struct {
	CreatorID string
	VisitorID string
	IPAddress string
	UserAgent string
	Referer   string
}

type TrackResult struct {
	VisitorID string
	CreatorID string
	ExpiresAt time.Time
}

type trackService struct {
	log          *slog.Logger
	visitRepo    storage.VisitStorage
	cookieWindow time.Duration
}

func NewTrackService(log *slog.Logger, visitRepo storage.VisitStorage, cookieWindowHours int) TrackService {
	return &trackService{
		log:          log,
		visitRepo:    visitRepo,
		cookieWindow: time.Duration(cookieWindowHours) * time.Hour,
	}
}

// Track регистрирует посещение и возвращает идентификатор посетителя с окном
// атрибуции. Ошибка записи не мешает выставить куки: визит — аналитика,
// а не транзакционные данные.
func (s *trackService) Track(ctx context.Context, req TrackRequest) *TrackResult {
	const op = "service.TrackService.Track"
	logger := s.log.With(slog.String("op", op), slog.String("creatorID", req.CreatorID))

	visitorID := req.VisitorID
	if visitorID == "" {
		id := uuid.New()
		visitorID = hex.EncodeToString(id[:]) // 32 hex-символа
	}

	now := time.Now()
	expiresAt := now.Add(s.cookieWindow)

	visit := &models.ShopVisit{
		CreatorID: req.CreatorID,
		VisitorID: visitorID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Referer:   req.Referer,
		VisitedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.visitRepo.CreateVisit(ctx, visit); err != nil {
		logger.Error("failed to record shop visit", slog.Any("error", err))
	}

	return &TrackResult{
		VisitorID: visitorID,
		CreatorID: req.CreatorID,
		ExpiresAt: expiresAt,
	}
}
