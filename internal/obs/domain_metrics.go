package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CouponEvaluationsTotal counts applicable-coupon evaluation outcomes.
	CouponEvaluationsTotal *prometheus.CounterVec
	// CouponApplicationsTotal counts apply-coupon outcomes by coupon kind.
	CouponApplicationsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CouponEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_evaluations_total",
			Help:      "Count of applicable-coupon evaluations by result.",
		}, []string{"result"})
		CouponApplicationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_applications_total",
			Help:      "Count of coupon applications by kind and result.",
		}, []string{"kind", "result"})
		mustRegister(reg, CouponEvaluationsTotal, CouponApplicationsTotal)
	})
}

// CountCouponEvaluation records one evaluation outcome. Safe to call before
// metrics registration; it is then a no-op.
func CountCouponEvaluation(result string) {
	if CouponEvaluationsTotal != nil {
		CouponEvaluationsTotal.WithLabelValues(result).Inc()
	}
}

// CountCouponApplication records one application outcome.
func CountCouponApplication(kind, result string) {
	if CouponApplicationsTotal != nil {
		CouponApplicationsTotal.WithLabelValues(kind, result).Inc()
	}
}
