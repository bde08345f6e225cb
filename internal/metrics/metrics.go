package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит счётчики жизненного цикла заказа.
type OrderMetrics struct {
	ordersPrepared    prometheus.Counter
	paymentsCompleted prometheus.Counter
	ordersCancelled   prometheus.Counter
	webhookEvents     *prometheus.CounterVec
}

// NewOrderMetrics создаёт метрики на дефолтном registerer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer позволяет подменить registerer в тестах.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPrepared: registerCounter(registerer, prometheus.CounterOpts{
			Name: "kviewshop_orders_prepared_total",
			Help: "Total number of orders created in PENDING state",
		}),
		paymentsCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "kviewshop_payments_completed_total",
			Help: "Total number of orders transitioned to PAID",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "kviewshop_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		webhookEvents: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kviewshop_webhook_events_total",
			Help: "Total number of payment gateway webhook events received",
		}, []string{"event"}),
	}
}

func (m *OrderMetrics) OrderPrepared() {
	if m == nil {
		return
	}
	m.ordersPrepared.Inc()
}

func (m *OrderMetrics) PaymentCompleted() {
	if m == nil {
		return
	}
	m.paymentsCompleted.Inc()
}

func (m *OrderMetrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *OrderMetrics) WebhookEvent(eventType string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType).Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}
