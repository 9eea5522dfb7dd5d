package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics tracks settled transfers by payment mode.
type PaymentMetrics struct {
	settlements *prometheus.CounterVec
	netCents    *prometheus.CounterVec
	feeCents    *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settlements_total",
		Help: "Settled transfers by payment mode.",
	}, []string{"mode"})
	netCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_net_cents_total",
		Help: "Net cents delivered to recipients by payment mode.",
	}, []string{"mode"})
	feeCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_fee_cents_total",
		Help: "Fee cents collected by payment mode.",
	}, []string{"mode"})
	reg.MustRegister(settlements, netCents, feeCents)
	return &PaymentMetrics{
		settlements: settlements,
		netCents:    netCents,
		feeCents:    feeCents,
	}
}

// ObserveSettlement records one settled transfer.
func (p *PaymentMetrics) ObserveSettlement(mode string, netCents, feeCents int64) {
	if p == nil || p.settlements == nil {
		return
	}
	label := normalizeLabel(mode)
	p.settlements.WithLabelValues(label).Inc()
	p.netCents.WithLabelValues(label).Add(float64(netCents))
	p.feeCents.WithLabelValues(label).Add(float64(feeCents))
}
