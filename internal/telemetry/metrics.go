package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the scheduler's collectors. Only TasksByStatus is
// updated (from the summary refresh loop); the counters are registered
// but nothing in the module increments them.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	SubmitRetries    prometheus.Counter
	ExecutionRetries prometheus.Counter
	EventHandlerFail *prometheus.CounterVec
	TasksByStatus    *prometheus.GaugeVec
}

// NewMetrics registers the scheduler's collectors against reg and
// returns the handles used to update them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cyclesched_submissions_total",
			Help: "Job submission attempts by outcome (succeeded, failed).",
		}, []string{"outcome"}),
		SubmitRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cyclesched_submit_retries_total",
			Help: "Submission retries scheduled after a submit failure.",
		}),
		ExecutionRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cyclesched_execution_retries_total",
			Help: "Execution retries scheduled after a job failure.",
		}),
		EventHandlerFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cyclesched_event_handler_failures_total",
			Help: "Event-handler command failures by event name.",
		}, []string{"event"}),
		TasksByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cyclesched_tasks_by_status",
			Help: "Live proxy count per lifecycle status, from the last summary refresh.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.Submissions, m.SubmitRetries, m.ExecutionRetries, m.EventHandlerFail, m.TasksByStatus)
	return m
}
