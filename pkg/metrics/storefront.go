package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
)

// CartMetrics counts cart mutations by operation and outcome.
type CartMetrics struct {
	mutations *prometheus.CounterVec
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations by operation and whether they changed state.",
	}, []string{"op", "outcome"})
	reg.MustRegister(mutations)
	return &CartMetrics{mutations: mutations}
}

func (c *CartMetrics) ObserveMutation(op enums.CartOp, outcome enums.MutationOutcome) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(string(op)), string(outcome)).Inc()
}

// CheckoutMetrics counts checkout submissions by outcome.
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "submissions_total",
		Help:      "Checkout submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submissions)
	return &CheckoutMetrics{submissions: submissions}
}

func (c *CheckoutMetrics) ObserveSubmission(outcome enums.CheckoutOutcome) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(string(outcome))).Inc()
}
