package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Runs counts scrape runs by outcome label
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedscraper_runs_total",
		Help: "Total scrape runs by outcome",
	}, []string{"outcome"})
	// ProfileErrors counts profiles recorded with an error marker
	ProfileErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feedscraper_profile_errors_total",
		Help: "Profiles whose collection failed",
	})
	// PostsCollected counts normalized posts kept across runs
	PostsCollected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feedscraper_posts_collected_total",
		Help: "Posts collected across all runs",
	})
	// RunDuration observes the wall time of each run
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedscraper_run_duration_seconds",
		Help:    "Scrape run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	// WebhookRequests counts webhook responses by status code
	WebhookRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedscraper_webhook_requests_total",
		Help: "Webhook requests by status code",
	}, []string{"code"})
)

func init() {
	prometheus.MustRegister(Runs, ProfileErrors, PostsCollected, RunDuration, WebhookRequests)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records the outcome and duration of one run
func ObserveRun(outcome string, start time.Time) {
	Runs.WithLabelValues(outcome).Inc()
	RunDuration.Observe(time.Since(start).Seconds())
}

// ObserveProfile records one profile's collection result
func ObserveProfile(posts int, err error) {
	if err != nil {
		ProfileErrors.Inc()
		return
	}
	PostsCollected.Add(float64(posts))
}

// IncWebhookRequest counts a webhook response by status code
func IncWebhookRequest(code string) { WebhookRequests.WithLabelValues(code).Inc() }
