package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "homeworkbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "homeworkbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeworkbot", Name: "submissions_total", Help: "Stored submissions",
	}, []string{"kind", "content"})
	AlbumsFinalized = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "homeworkbot", Name: "albums_finalized_total",
		Help: "Media-group buffers turned into submissions",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "homeworkbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, Submissions, AlbumsFinalized, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
