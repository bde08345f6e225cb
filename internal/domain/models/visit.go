package models

import "time"

// ShopVisit — посещение магазина криэйтора, записывается эндпоинтом /api/track
type ShopVisit struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	VisitorID string    `json:"visitor_id"` // 32 hex-символа
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
	VisitedAt time.Time `json:"visited_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
