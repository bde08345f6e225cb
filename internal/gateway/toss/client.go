package toss

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Client — клиент API Toss Payments. Аутентификация basic-auth: секретный
// ключ в качестве имени пользователя, пароль пустой.
type Client struct {
	http *resty.Client
}

func New(baseURL, secretKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(secretKey, "").
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient}
}

// ConfirmRequest — тело запроса подтверждения платежа.
type ConfirmRequest struct {
	OrderID    string `json:"orderId"`
	PaymentKey string `json:"paymentKey"`
	Amount     int64  `json:"amount"`
}

// Payment — нормализованный ответ шлюза об успешном платеже.
type Payment struct {
	PaymentKey  string          `json:"paymentKey"`
	OrderID     string          `json:"orderId"`
	OrderName   string          `json:"orderName"`
	TotalAmount int64           `json:"totalAmount"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	ApprovedAt  string          `json:"approvedAt"`
	Receipt     json.RawMessage `json:"receipt,omitempty"`
	Card        json.RawMessage `json:"card,omitempty"`
	EasyPay     json.RawMessage `json:"easyPay,omitempty"`
}

// APIError — отказ шлюза. Код и сообщение пробрасываются клиенту без
// изменений вместе с HTTP-статусом шлюза (истёкшая карта, нехватка средств и т.п.).
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("toss: %s (%s)", e.Message, e.Code)
}

// ConfirmPayment вызывает POST /v1/payments/confirm.
// Ретраев нет: решение об отказе принимает сам шлюз, повтор на нашей стороне
// мог бы привести к двойному списанию.
func (c *Client) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*Payment, error) {
	var payment Payment
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&payment).
		SetError(&apiErr).
		Post("/v1/payments/confirm")
	if err != nil {
		return nil, fmt.Errorf("toss confirm request failed: %w", err)
	}

	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = "payment confirmation failed"
		}
		return nil, &apiErr
	}

	return &payment, nil
}
