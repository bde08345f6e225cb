package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cnec/kviewshop/internal/gateway/toss"
	"github.com/cnec/kviewshop/internal/service"
	"github.com/cnec/kviewshop/internal/storage"
)

// ConfirmRequest — колбэк браузера после успеха платёжного SDK
type ConfirmRequest struct {
	OrderID    string `json:"orderId" validate:"required"`
	PaymentKey string `json:"paymentKey" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

type ConfirmResponse struct {
	Success bool          `json:"success"`
	Payment *toss.Payment `json:"payment"`
}

// ConfirmErrorResponse повторяет формат отказа шлюза: его код и сообщение
// уходят клиенту без изменений.
type ConfirmErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ConfirmHandler обрабатывает запрос POST /api/payment/confirm
func ConfirmHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ConfirmHandler"
		logger := log.With(slog.String("op", op))

		var req ConfirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest,
				ConfirmErrorResponse{Message: "Missing required parameters"})
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest,
				ConfirmErrorResponse{Message: "Missing required parameters"})
			return
		}

		payment, err := paymentService.Confirm(r.Context(), req.OrderID, req.PaymentKey, req.Amount)
		if err != nil {
			// Отказ шлюза: статус, код и сообщение — его собственные
			var apiErr *toss.APIError
			if errors.As(err, &apiErr) {
				respondJSON(w, logger, apiErr.StatusCode,
					ConfirmErrorResponse{Message: apiErr.Message, Code: apiErr.Code})
				return
			}
			if errors.Is(err, storage.ErrOrderNotFound) {
				respondJSON(w, logger, http.StatusNotFound,
					ConfirmErrorResponse{Message: "Order not found"})
				return
			}
			if errors.Is(err, service.ErrAmountMismatch) {
				respondJSON(w, logger, http.StatusBadRequest,
					ConfirmErrorResponse{Message: err.Error()})
				return
			}
			logger.Error("payment confirmation failed", slog.Any("error", err))
			respondJSON(w, logger, http.StatusInternalServerError,
				ConfirmErrorResponse{Message: "Internal server error"})
			return
		}

		respondJSON(w, logger, http.StatusOK, ConfirmResponse{Success: true, Payment: payment})
	}
}
