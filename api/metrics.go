package api

import "github.com/prometheus/client_golang/prometheus"

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

type Metrics struct {
	tasks *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Task submissions by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.tasks)
	return m
}

func (m *Metrics) countTask(result string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(result).Inc()
}
