package delivery

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	attempts *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "testorders",
		Subsystem: "delivery",
		Name:      "attempts_total",
		Help:      "Result delivery attempts by channel and outcome.",
	}, []string{"channel", "outcome"})

	if err := registerer.Register(attempts); err != nil {
		return nil, err
	}
	return &Metrics{attempts: attempts}, nil
}

func (m *Metrics) observe(channel Channel, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.attempts.WithLabelValues(string(channel), outcome).Inc()
}
