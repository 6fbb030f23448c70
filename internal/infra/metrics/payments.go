package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		refundsTotal,
		webhookEventsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Order payments by gateway and outcome (completed/failed/duplicate).",
		},
		[]string{"gateway", "outcome"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of completed orders, labeled by currency.",
		},
		[]string{"currency"},
	)

	refundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_total",
			Help: "Refunds by gateway and outcome.",
		},
		[]string{"gateway", "outcome"},
	)

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Provider webhook deliveries by gateway and event type.",
		},
		[]string{"gateway", "type"},
	)
)

func IncPayment(gateway, outcome string) {
	paymentsTotal.WithLabelValues(norm(gateway), norm(outcome)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncRefund(gateway, outcome string) {
	refundsTotal.WithLabelValues(norm(gateway), norm(outcome)).Inc()
}

func IncWebhookEvent(gateway, typ string) {
	webhookEventsTotal.WithLabelValues(norm(gateway), norm(typ)).Inc()
}
