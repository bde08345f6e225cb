package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/cnec/kviewshop/internal/gateway/portone"
	"github.com/cnec/kviewshop/internal/service"
)

// WebhookResponse — ответ шлюзу; кроме ошибок подписи всегда уходит HTTP 200,
// чтобы шлюз не начал ретраить события.
type WebhookResponse struct {
	Received    bool   `json:"received"`
	Processed   bool   `json:"processed"`
	Reason      string `json:"reason,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
	NewStatus   string `json:"newStatus,omitempty"`
}

// WebhookHandler обрабатывает запрос POST /api/payments/webhook.
// Пустой webhookSecret отключает проверку подписи — осознанно небезопасный
// режим для локальной разработки, в проде секрет обязателен.
func WebhookHandler(log *slog.Logger, webhookService service.WebhookService, webhookSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.WebhookHandler"
		logger := log.With(slog.String("op", op))

		rawBody, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("failed to read webhook body", slog.Any("error", err))
			respondJSON(w, logger, http.StatusOK,
				WebhookResponse{Received: true, Processed: false, Reason: "Internal processing error"})
			return
		}

		// Проверка подписи от сырого тела
		if webhookSecret != "" {
			signature := r.Header.Get(portone.SignatureHeader)
			if signature == "" {
				respondError(w, logger, http.StatusUnauthorized, "Missing webhook signature")
				return
			}
			if !portone.VerifySignature(rawBody, signature, webhookSecret) {
				logger.Warn("invalid webhook signature")
				respondError(w, logger, http.StatusUnauthorized, "Invalid webhook signature")
				return
			}
		} else {
			logger.Warn("webhook secret is not configured, skipping signature verification")
		}

		var payload portone.WebhookPayload
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			logger.Error("invalid webhook payload", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "Invalid webhook payload")
			return
		}
		if payload.Type == "" || payload.Data.PaymentID == "" {
			respondError(w, logger, http.StatusBadRequest, "Invalid webhook payload")
			return
		}

		result := webhookService.Process(r.Context(), payload)

		respondJSON(w, logger, http.StatusOK, WebhookResponse{
			Received:    true,
			Processed:   result.Processed,
			Reason:      result.Reason,
			OrderNumber: result.OrderNumber,
			NewStatus:   string(result.NewStatus),
		})
	}
}
