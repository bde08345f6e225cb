package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cnec/kviewshop/internal/service"
)

// Имена куки атрибуции посетителя
const (
	VisitorCookie = "cnec_visitor"
	CreatorCookie = "cnec_creator"
)

type TrackRequest struct {
	CreatorID string `json:"creator_id" validate:"required"`
}

type TrackResponse struct {
	VisitorID string `json:"visitor_id"`
	CreatorID string `json:"creator_id"`
	ExpiresAt string `json:"expires_at"`
}

// TrackHandler обрабатывает запрос POST /api/track: записывает визит и
// выставляет куки посетителя/криэйтора на окно атрибуции.
func TrackHandler(log *slog.Logger, trackService service.TrackService, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TrackHandler"
		logger := log.With(slog.String("op", op))

		var req TrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "creator_id required")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, logger, http.StatusBadRequest, "creator_id required")
			return
		}

		// Уже известный посетитель приходит с кукой
		var existingVisitorID string
		if cookie, err := r.Cookie(VisitorCookie); err == nil {
			existingVisitorID = cookie.Value
		}

		result := trackService.Track(r.Context(), service.TrackRequest{
			CreatorID: req.CreatorID,
			VisitorID: existingVisitorID,
			IPAddress: clientIP(r),
			UserAgent: r.Header.Get("User-Agent"),
			Referer:   r.Header.Get("Referer"),
		})

		maxAge := int(time.Until(result.ExpiresAt).Seconds())
		http.SetCookie(w, &http.Cookie{
			Name:     VisitorCookie,
			Value:    result.VisitorID,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		http.SetCookie(w, &http.Cookie{
			Name:     CreatorCookie,
			Value:    result.CreatorID,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteLaxMode,
		})

		respondJSON(w, logger, http.StatusOK, TrackResponse{
			VisitorID: result.VisitorID,
			CreatorID: result.CreatorID,
			ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
