package service

import "errors"

// Ошибки уровня бизнес-логики. Обработчики переводят их в HTTP-статусы
// через errors.Is, поэтому все проверяемые состояния собраны здесь.
var (
	// ErrInvalidProduct — товар не найден или не привязан к бренду.
	ErrInvalidProduct = errors.New("invalid product: could not determine brand")
	// ErrOrderNotPending — заказ уже не в PENDING, переход к оплате невозможен.
	ErrOrderNotPending = errors.New("order is not in PENDING state")
	// ErrAlreadyProcessed — повторный вызов перехода PENDING -> PAID.
	ErrAlreadyProcessed = errors.New("order already processed")
	// ErrInvalidPaymentID — пустой идентификатор платежа.
	ErrInvalidPaymentID = errors.New("invalid paymentId")
	// ErrAmountMismatch — сумма, подтверждённая шлюзом, не совпала с суммой заказа.
	ErrAmountMismatch = errors.New("confirmed amount does not match order total")
	// ErrNotCancellable — статус заказа не допускает отмену.
	ErrNotCancellable = errors.New("order cannot be cancelled")
	// ErrEmptyReason — причина отмены обязательна.
	ErrEmptyReason = errors.New("cancellation reason is required")
)
