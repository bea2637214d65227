package infrastructures

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the business counters exported on /metrics.
type Metrics struct {
	CouponApplications *prometheus.CounterVec
	CouponRedemptions  *prometheus.CounterVec
	CouponClaims       prometheus.Counter
	PointsEarned       prometheus.Counter
	PointsRedeemed     prometheus.Counter
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CouponApplications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feastly",
			Name:      "coupon_applications_total",
			Help:      "Coupon previews by outcome.",
		}, []string{"result"}),
		CouponRedemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feastly",
			Name:      "coupon_redemptions_total",
			Help:      "Coupon redemptions by outcome.",
		}, []string{"result"}),
		CouponClaims: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "feastly",
			Name:      "coupon_claims_total",
			Help:      "Coupons added to user wallets.",
		}),
		PointsEarned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "feastly",
			Name:      "points_earned_total",
			Help:      "Loyalty points granted.",
		}),
		PointsRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "feastly",
			Name:      "points_redeemed_total",
			Help:      "Loyalty points spent on rewards.",
		}),
	}
}
