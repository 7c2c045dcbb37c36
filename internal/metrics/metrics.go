package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weft_command_runs_total",
		Help: "Total command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weft_command_errors_total",
		Help: "Total failed command invocations",
	}, []string{"command"})
	PostsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weft_posts_loaded_total",
		Help: "Posts loaded from archive files",
	})
	MessagesLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weft_messages_loaded_total",
		Help: "DM messages loaded from archive files",
	})
	ThreadsBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weft_threads_built_total",
		Help: "Reconstructed threads",
	})
	DuplicatePostIDs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weft_duplicate_post_ids_total",
		Help: "Posts discarded because their id was already indexed",
	})
	EventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weft_events_dropped_total",
		Help: "Records skipped during event normalization",
	})
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "weft_analysis_duration_seconds",
		Help:    "Full pipeline duration seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		CommandRuns, CommandErrors,
		PostsLoaded, MessagesLoaded,
		ThreadsBuilt, DuplicatePostIDs, EventsDropped,
		AnalysisDuration,
	)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
// Disabled unless addr or METRICS_ADDR is set.
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveAnalysisDuration records a run duration.
func ObserveAnalysisDuration(start time.Time) {
	AnalysisDuration.Observe(time.Since(start).Seconds())
}

// IncCommandRun increments the run counter for a command.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError increments the error counter for a command.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
