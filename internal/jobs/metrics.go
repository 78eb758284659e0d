package jobs

import "github.com/prometheus/client_golang/prometheus"

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeworkbot_job_runs_total",
			Help: "Total background job runs",
		},
		[]string{"job"},
	)

	jobErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeworkbot_job_errors_total",
			Help: "Total background job errors",
		},
		[]string{"job"},
	)

	jobSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeworkbot_job_skipped_total",
			Help: "Job ticks skipped because the previous run was still in progress",
		},
		[]string{"job"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeworkbot_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(jobRuns, jobErrors, jobSkipped, jobDuration)
}
