package portone

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader — заголовок, в котором PortOne передаёт подпись вебхука.
const SignatureHeader = "x-portone-signature"

// WebhookPayload — событие вебхука PortOne, сервер-сервер.
type WebhookPayload struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      WebhookData `json:"data"`
}

type WebhookData struct {
	PaymentID     string `json:"paymentId"`
	TransactionID string `json:"transactionId,omitempty"`
	OrderNumber   string `json:"orderNumber,omitempty"`
	OrderID       string `json:"orderId,omitempty"`
	Status        string `json:"status,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	CancelledAt   string `json:"cancelledAt,omitempty"`
	CancelReason  string `json:"cancelReason,omitempty"`
}

// VerifySignature проверяет подпись HMAC-SHA256 от сырого тела запроса.
// Сравнение за константное время, чтобы не давать утечки по таймингу.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
