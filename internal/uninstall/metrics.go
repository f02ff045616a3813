package uninstall

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors the scheduler loop updates after
// every offer cycle. Kept as a small struct (rather than package-level
// globals) so tests can construct their own registry-free instance.
type Metrics struct {
	StepsByStatus  *prometheus.GaugeVec
	OffersAccepted prometheus.Counter
	OffersDeclined prometheus.Counter
}

// NewMetrics registers the uninstall coordinator's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "uninstall",
			Name:      "plan_steps",
			Help:      "Number of uninstall plan steps currently in each status.",
		}, []string{"status"}),
		OffersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uninstall",
			Name:      "offers_accepted_total",
			Help:      "Total offers accepted with at least one cleanup operation.",
		}),
		OffersDeclined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uninstall",
			Name:      "offers_declined_total",
			Help:      "Total offers declined with no usable reservations.",
		}),
	}
	reg.MustRegister(m.StepsByStatus, m.OffersAccepted, m.OffersDeclined)
	return m
}

// Observe updates StepsByStatus from the current plan.
func (m *Metrics) Observe(plan *Plan) {
	if m == nil {
		return
	}
	counts := map[Status]int{}
	for _, s := range plan.Steps() {
		counts[s.Status]++
	}
	for _, s := range []Status{
		StatusPending, StatusPrepared, StatusStarting, StatusComplete, StatusError, StatusWaiting,
	} {
		m.StepsByStatus.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
