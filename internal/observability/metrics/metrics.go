package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReferralMetrics exposes counters/histograms for the referral workflow.
type ReferralMetrics struct {
	submitTotal    *prometheus.CounterVec
	emailTotal     *prometheus.CounterVec
	recordFailures prometheus.Counter
	submitLatency  prometheus.Histogram
}

func NewReferralMetrics(reg prometheus.Registerer) *ReferralMetrics {
	m := &ReferralMetrics{
		submitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "referral",
			Subsystem: "submit",
			Name:      "total",
			Help:      "Total referral submissions by outcome",
		}, []string{"outcome"}),
		emailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "referral",
			Subsystem: "email",
			Name:      "total",
			Help:      "Total confirmation email attempts",
		}, []string{"recipient", "status"}),
		recordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "referral",
			Subsystem: "store",
			Name:      "record_failures_total",
			Help:      "Appointment records that failed to persist",
		}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "referral",
			Subsystem: "submit",
			Name:      "latency_seconds",
			Help:      "Latency of referral submission processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submitTotal, m.emailTotal, m.recordFailures, m.submitLatency)
	return m
}

// ObserveSubmit records one finished submission. Outcome is one of
// booked, partial, rejected.
func (m *ReferralMetrics) ObserveSubmit(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submitTotal.WithLabelValues(outcome).Inc()
	m.submitLatency.Observe(seconds)
}

// ObserveEmail records one email attempt. Recipient is specialist or
// patient; status is sent, failed, or skipped.
func (m *ReferralMetrics) ObserveEmail(recipient, status string) {
	if m == nil {
		return
	}
	m.emailTotal.WithLabelValues(recipient, status).Inc()
}

// ObserveRecordFailure counts a failed appointment write.
func (m *ReferralMetrics) ObserveRecordFailure() {
	if m == nil {
		return
	}
	m.recordFailures.Inc()
}
