package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cnec/kviewshop/internal/service"
)

// PrepareRequest — входной JSON оформления заказа с тегами валидации
type PrepareRequest struct {
	Items     []PrepareRequestItem   `json:"items" validate:"required,min=1,dive"`
	CreatorID string                 `json:"creatorId" validate:"required"`
	Buyer     PrepareRequestBuyer    `json:"buyer" validate:"required"`
	Shipping  PrepareRequestShipping `json:"shipping" validate:"required"`
}

type PrepareRequestItem struct {
	ProductID  string `json:"productId" validate:"required"`
	CampaignID string `json:"campaignId"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	UnitPrice  int64  `json:"unitPrice" validate:"gte=0"`
}

type PrepareRequestBuyer struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type PrepareRequestShipping struct {
	Address string `json:"address" validate:"required"`
	Zipcode string `json:"zipcode" validate:"required"`
	Detail  string `json:"detail"`
	Memo    string `json:"memo"`
}

// PrepareHandler обрабатывает запрос POST /api/payments/prepare
func PrepareHandler(log *slog.Logger, prepareService service.PrepareService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PrepareHandler"
		logger := log.With(slog.String("op", op))

		var req PrepareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, logger, http.StatusBadRequest, "validation error: "+err.Error())
			return
		}

		items := make([]service.PrepareItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, service.PrepareItem{
				ProductID:  item.ProductID,
				CampaignID: item.CampaignID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
			})
		}

		result, err := prepareService.Prepare(r.Context(), service.PrepareOrderRequest{
			Items:     items,
			CreatorID: req.CreatorID,
			Buyer: service.PrepareBuyer{
				Name:  req.Buyer.Name,
				Phone: req.Buyer.Phone,
				Email: req.Buyer.Email,
			},
			Shipping: service.PrepareShipping{
				Address: req.Shipping.Address,
				Zipcode: req.Shipping.Zipcode,
				Detail:  req.Shipping.Detail,
				Memo:    req.Shipping.Memo,
			},
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidProduct) {
				respondError(w, logger, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("failed to prepare order", slog.Any("error", err))
			respondError(w, logger, http.StatusInternalServerError, "failed to create order")
			return
		}

		respondJSON(w, logger, http.StatusOK, result)
	}
}
