package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "article_server_worker_tasks_received_total",
			Help: "Total number of generation tasks received from the queue.",
		},
	)
	tasksSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "article_server_worker_tasks_succeeded_total",
			Help: "Total number of generation tasks completed successfully.",
		},
	)
	tasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_server_worker_tasks_failed_total",
			Help: "Total number of failed generation tasks, partitioned by reason.",
		},
		[]string{"reason"},
	)
	tasksAborted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "article_server_worker_tasks_aborted_total",
			Help: "Total number of generation tasks aborted by user request.",
		},
	)
	taskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_server_worker_task_duration_seconds",
			Help:    "End-to-end processing duration of a generation task.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
	sectionsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "article_server_worker_sections_generated_total",
			Help: "Total number of sections generated across all tasks.",
		},
	)
)

func recordTaskReceived() { tasksReceived.Inc() }

func recordTaskResult(status string, reason string, d time.Duration) {
	taskDuration.Observe(d.Seconds())
	switch status {
	case "success":
		tasksSucceeded.Inc()
	case "aborted":
		tasksAborted.Inc()
	default:
		tasksFailed.WithLabelValues(reason).Inc()
	}
}

func recordSectionGenerated() { sectionsGenerated.Inc() }
