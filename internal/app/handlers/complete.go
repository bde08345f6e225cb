package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cnec/kviewshop/internal/service"
	"github.com/cnec/kviewshop/internal/storage"
)

// CompleteRequest — завершение платежа, проверенного внешней стороной
type CompleteRequest struct {
	OrderID    string `json:"orderId" validate:"required"`
	PaymentID  string `json:"paymentId" validate:"required"`
	PgProvider string `json:"pgProvider"`
}

type CompleteResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
}

// CompleteHandler обрабатывает запрос POST /api/payments/complete
func CompleteHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CompleteHandler"
		logger := log.With(slog.String("op", op))

		var req CompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "orderId and paymentId are required")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "orderId and paymentId are required")
			return
		}

		orderNumber, err := paymentService.Complete(r.Context(), req.OrderID, req.PaymentID, req.PgProvider)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				respondError(w, logger, http.StatusNotFound, "Order not found")
				return
			}
			if errors.Is(err, service.ErrOrderNotPending) || errors.Is(err, service.ErrInvalidPaymentID) ||
				errors.Is(err, service.ErrAlreadyProcessed) {
				respondError(w, logger, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("failed to complete payment", slog.Any("error", err))
			respondError(w, logger, http.StatusInternalServerError, "failed to complete payment")
			return
		}

		respondJSON(w, logger, http.StatusOK, CompleteResponse{Success: true, OrderNumber: orderNumber})
	}
}
