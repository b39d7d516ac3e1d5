package reporting

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	reports *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "testorders",
		Subsystem: "reporting",
		Name:      "reports_total",
		Help:      "Results forwarded to the reporting sink by sink and outcome.",
	}, []string{"sink", "outcome"})

	if err := registerer.Register(reports); err != nil {
		return nil, err
	}
	return &Metrics{reports: reports}, nil
}

func (m *Metrics) observe(sink string, outcome string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(sink, outcome).Inc()
}
