package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cnec/kviewshop/internal/service"
	"github.com/cnec/kviewshop/internal/storage"
	"github.com/go-chi/chi/v5"
)

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type CancelResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
}

// CancelHandler обрабатывает запрос POST /api/orders/{id}/cancel
func CancelHandler(log *slog.Logger, cancelService service.CancelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CancelHandler"
		logger := log.With(slog.String("op", op))

		orderID := chi.URLParam(r, "id")
		if orderID == "" {
			respondError(w, logger, http.StatusBadRequest, "order id is required")
			return
		}

		var req CancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "Cancellation reason is required")
			return
		}

		if err := validate.Struct(req); err != nil {
			respondError(w, logger, http.StatusBadRequest, "Cancellation reason is required")
			return
		}

		orderNumber, err := cancelService.Cancel(r.Context(), orderID, req.Reason)
		if err != nil {
			if errors.Is(err, service.ErrEmptyReason) {
				respondError(w, logger, http.StatusBadRequest, "Cancellation reason is required")
				return
			}
			if errors.Is(err, storage.ErrOrderNotFound) {
				respondError(w, logger, http.StatusNotFound, "Order not found")
				return
			}
			if errors.Is(err, service.ErrNotCancellable) {
				// В сообщении — текущий статус заказа
				respondError(w, logger, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("failed to cancel order", slog.Any("error", err))
			respondError(w, logger, http.StatusInternalServerError, "failed to cancel order")
			return
		}

		respondJSON(w, logger, http.StatusOK, CancelResponse{Success: true, OrderNumber: orderNumber})
	}
}
