package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		checkoutsTotal,
		enrollmentsTotal,
		mailSentTotal,
	)
}

var (
	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout initiations by gateway and outcome (created/free/rejected/error).",
		},
		[]string{"gateway", "outcome"},
	)

	enrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Enrollments created or upgraded through the payment flow.",
		},
		[]string{"kind"}, // created | upgraded | failed
	)

	mailSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sent_total",
			Help: "Outbound mail attempts by template and outcome.",
		},
		[]string{"template", "outcome"},
	)
)

func IncCheckout(gateway, outcome string) {
	checkoutsTotal.WithLabelValues(norm(gateway), norm(outcome)).Inc()
}

func IncEnrollment(kind string) {
	enrollmentsTotal.WithLabelValues(norm(kind)).Inc()
}

func IncMail(template, outcome string) {
	mailSentTotal.WithLabelValues(norm(template), norm(outcome)).Inc()
}
