package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedemptionDuration tracks the latency of voucher redemption attempts
	RedemptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "voucher_redemption_duration_seconds",
			Help: "Duration of voucher redemption attempts in seconds",
			Buckets: []float64{
				0.0005, // 0.5ms
				0.001,  // 1ms
				0.005,  // 5ms
				0.01,   // 10ms
				0.025,  // 25ms
				0.05,   // 50ms
				0.1,    // 100ms
				0.25,   // 250ms
				0.5,    // 500ms
				1.0,    // 1s
			},
		},
		[]string{"status"}, // success, rejected or error
	)

	// RedemptionsTotal counts redemption attempts by outcome
	RedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_redemptions_total",
			Help: "Voucher redemption attempts partitioned by outcome",
		},
		[]string{"outcome"},
	)

	// VouchersIssuedTotal counts vouchers created by event admins
	VouchersIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vouchers_issued_total",
			Help: "Number of vouchers issued",
		},
	)
)

// RecordRedemption records the outcome and duration of a redemption attempt
func RecordRedemption(status, outcome string, duration float64) {
	RedemptionDuration.WithLabelValues(status).Observe(duration)
	RedemptionsTotal.WithLabelValues(outcome).Inc()
}

func RecordVoucherIssued() {
	VouchersIssuedTotal.Inc()
}
