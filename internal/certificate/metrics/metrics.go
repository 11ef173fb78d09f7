package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certificate module.
// Tracks issuance by cohort, promotions, verification outcomes and the
// duration of the serialized issue path.
type Metrics struct {
	CertificatesIssued  *prometheus.CounterVec
	RegistrantsPromoted prometheus.Counter
	SerialProbeRetries  prometheus.Counter
	Verifications       *prometheus.CounterVec
	IssueDuration       prometheus.Histogram
	VerifyDuration      prometheus.Histogram
}

// New creates certificate metrics registered on reg. A nil reg leaves the
// collectors unregistered, which tests rely on.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CertificatesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "romportal_certificates_issued_total",
			Help: "Total number of certificates issued, by cohort and origin",
		}, []string{"cohort", "origin"}),
		RegistrantsPromoted: f.NewCounter(prometheus.CounterOpts{
			Name: "romportal_registrants_promoted_total",
			Help: "Total number of registrants promoted to certificates",
		}),
		SerialProbeRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "romportal_serial_probe_retries_total",
			Help: "Generated codes that collided with an existing number and were bumped",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "romportal_verifications_total",
			Help: "Verification lookups, by result",
		}, []string{"result"}),
		IssueDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "romportal_issue_duration_seconds",
			Help:    "Duration of the lock-count-generate-insert transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		VerifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "romportal_verify_duration_seconds",
			Help:    "Duration of verification lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementIssued(cohort, origin string) {
	m.CertificatesIssued.WithLabelValues(cohort, origin).Inc()
}

func (m *Metrics) IncrementPromoted() {
	m.RegistrantsPromoted.Inc()
}

func (m *Metrics) IncrementProbeRetry() {
	m.SerialProbeRetries.Inc()
}

// IncrementVerification records a lookup result: "modern", "legacy" or "miss".
func (m *Metrics) IncrementVerification(result string) {
	m.Verifications.WithLabelValues(result).Inc()
}

// ObserveIssue records the duration of an issue transaction.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}

// ObserveVerify records the duration of a verification lookup.
func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
