package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseURL = "http://localhost:8080"

// Сценарии рассчитаны на запущенный сервер с применёнными миграциями и
// тестовым товаром из seed-набора.
const (
	seedProductID = "00000000-0000-0000-0000-000000000001"
	seedCreatorID = "00000000-0000-0000-0000-0000000000aa"
)

// PrepareResponse – структура ответа от /api/payments/prepare
type PrepareResponse struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	TotalAmount int64  `json:"totalAmount"`
}

// CancelResponse – структура ответа от /api/orders/{id}/cancel
type CancelResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
}

// WebhookResponse – структура ответа от /api/payments/webhook
type WebhookResponse struct {
	Received  bool `json:"received"`
	Processed bool `json:"processed"`
}

// TrackResponse – структура ответа от /api/track
type TrackResponse struct {
	VisitorID string `json:"visitor_id"`
	CreatorID string `json:"creator_id"`
	ExpiresAt string `json:"expires_at"`
}

func prepareOrder(t *testing.T) PrepareResponse {
	reqBody := []byte(`{
		"items": [{"productId": "` + seedProductID + `", "quantity": 1, "unitPrice": 10000}],
		"creatorId": "` + seedCreatorID + `",
		"buyer": {"name": "Kim", "phone": "010-1234-5678", "email": "kim@example.com"},
		"shipping": {"address": "Seoul", "zipcode": "04524"}
	}`)
	resp, err := http.Post(baseURL+"/api/payments/prepare", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err, "Prepare request should not error")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid order")

	var prepResp PrepareResponse
	err = json.NewDecoder(resp.Body).Decode(&prepResp)
	assert.NoError(t, err, "Decoding prepare response should succeed")
	assert.NotEmpty(t, prepResp.OrderID, "Order ID should not be empty")
	assert.NotEmpty(t, prepResp.OrderNumber, "Order number should not be empty")
	return prepResp
}

// сценарий с успешным оформлением заказа
func TestPrepareOrder(t *testing.T) {
	prepResp := prepareOrder(t)
	assert.Equal(t, int64(10000), prepResp.TotalAmount, "total should equal item price, shipping is free")
	assert.Regexp(t, `^CNEC-\d{8}-\d{5}$`, prepResp.OrderNumber)
}

// сценарий с невалидным запросом на оформление
func TestPrepareOrderInvalid(t *testing.T) {
	reqBody := []byte(`{"items": [], "creatorId": ""}`)
	resp, err := http.Post(baseURL+"/api/payments/prepare", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for invalid order payload")
}

// сценарий с несуществующим товаром
func TestPrepareOrderUnknownProduct(t *testing.T) {
	reqBody := []byte(`{
		"items": [{"productId": "ffffffff-ffff-ffff-ffff-ffffffffffff", "quantity": 1, "unitPrice": 10000}],
		"creatorId": "` + seedCreatorID + `",
		"buyer": {"name": "Kim", "phone": "010-1234-5678", "email": "kim@example.com"},
		"shipping": {"address": "Seoul", "zipcode": "04524"}
	}`)
	resp, err := http.Post(baseURL+"/api/payments/prepare", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for unknown product")
}

// сценарий завершения платежа без обязательных полей
func TestCompletePaymentInvalid(t *testing.T) {
	reqBody := []byte(`{"orderId": "some-order"}`)
	resp, err := http.Post(baseURL+"/api/payments/complete", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for missing paymentId")
}

// сценарий завершения платежа по несуществующему заказу
func TestCompletePaymentOrderNotFound(t *testing.T) {
	reqBody := []byte(`{"orderId": "ffffffff-ffff-ffff-ffff-ffffffffffff", "paymentId": "imp-404"}`)
	resp, err := http.Post(baseURL+"/api/payments/complete", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for unknown order")
}

// сценарий отмены заказа в статусе PENDING
func TestCancelOrder(t *testing.T) {
	prepResp := prepareOrder(t)

	reqBody := []byte(`{"reason": "단순 변심"}`)
	resp, err := http.Post(baseURL+"/api/orders/"+prepResp.OrderID+"/cancel", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for cancelling a pending order")

	var cancelResp CancelResponse
	err = json.NewDecoder(resp.Body).Decode(&cancelResp)
	assert.NoError(t, err)
	assert.True(t, cancelResp.Success)
	assert.Equal(t, prepResp.OrderNumber, cancelResp.OrderNumber)
}

// сценарий повторной отмены: заказ уже в CANCELLED
func TestCancelOrderTwice(t *testing.T) {
	prepResp := prepareOrder(t)

	reqBody := []byte(`{"reason": "단순 변심"}`)
	resp, err := http.Post(baseURL+"/api/orders/"+prepResp.OrderID+"/cancel", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(baseURL+"/api/orders/"+prepResp.OrderID+"/cancel", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for cancelling twice")
}

// сценарий отмены без причины
func TestCancelOrderNoReason(t *testing.T) {
	prepResp := prepareOrder(t)

	reqBody := []byte(`{}`)
	resp, err := http.Post(baseURL+"/api/orders/"+prepResp.OrderID+"/cancel", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for missing reason")
}

// сценарий отмены несуществующего заказа
func TestCancelOrderNotFound(t *testing.T) {
	reqBody := []byte(`{"reason": "단순 변심"}`)
	resp, err := http.Post(baseURL+"/api/orders/ffffffff-ffff-ffff-ffff-ffffffffffff/cancel", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for unknown order")
}

// сценарий вебхука с неизвестным типом события: подтверждается без обработки
func TestWebhookUnknownEvent(t *testing.T) {
	reqBody := []byte(`{"type": "payment.ready", "data": {"paymentId": "imp-unknown"}}`)
	resp, err := http.Post(baseURL+"/api/payments/webhook", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "webhook must always answer 200 for valid payloads")

	var whResp WebhookResponse
	err = json.NewDecoder(resp.Body).Decode(&whResp)
	assert.NoError(t, err)
	assert.True(t, whResp.Received)
	assert.False(t, whResp.Processed)
}

// сценарий вебхука с пустым телом
func TestWebhookInvalidPayload(t *testing.T) {
	reqBody := []byte(`{"data": {}}`)
	resp, err := http.Post(baseURL+"/api/payments/webhook", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for payload without type")
}

// сценарий трекинга визита: куки и окно атрибуции
func TestTrackVisit(t *testing.T) {
	reqBody := []byte(`{"creator_id": "` + seedCreatorID + `"}`)
	resp, err := http.Post(baseURL+"/api/track", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for track request")

	var trackResp TrackResponse
	err = json.NewDecoder(resp.Body).Decode(&trackResp)
	assert.NoError(t, err)
	assert.Len(t, trackResp.VisitorID, 32, "visitor id should be 32 hex chars")
	assert.Equal(t, seedCreatorID, trackResp.CreatorID)

	var visitorCookie, creatorCookie bool
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "cnec_visitor":
			visitorCookie = true
			assert.Equal(t, trackResp.VisitorID, c.Value)
		case "cnec_creator":
			creatorCookie = true
		}
	}
	assert.True(t, visitorCookie, "cnec_visitor cookie should be set")
	assert.True(t, creatorCookie, "cnec_creator cookie should be set")
}

// сценарий трекинга без creator_id
func TestTrackVisitMissingCreator(t *testing.T) {
	reqBody := []byte(`{}`)
	resp, err := http.Post(baseURL+"/api/track", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for missing creator_id")
}
