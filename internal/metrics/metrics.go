package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"teampages/internal/db"
)

var pageViewDesc = prometheus.NewDesc(
	"teampages_page_views_total",
	"Total team page lookup count by outcome",
	[]string{"slug", "outcome"},
	nil,
)

// PageViewCollector is a custom Prometheus collector that reads page view
// counts from the database on each scrape.
type PageViewCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *PageViewCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pageViewDesc
}

// Collect queries the database for all page views and emits them as counters.
func (c *PageViewCollector) Collect(ch chan<- prometheus.Metric) {
	views, err := c.db.GetAllPageViews(context.Background())
	if err != nil {
		slog.Error("failed to collect page view metrics", "error", err)
		return
	}
	for _, v := range views {
		ch <- prometheus.MustNewConstMetric(
			pageViewDesc,
			prometheus.CounterValue,
			float64(v.Count),
			v.Slug,
			v.Outcome,
		)
	}
}

// Recorder provides async page view recording plus in-process counters for
// the slug allocator and the authorization cache.
type Recorder struct {
	db *db.DB

	slugAttempts   prometheus.Counter
	slugCollisions prometheus.Counter
	authzCacheHits prometheus.Counter
	authzCacheMiss prometheus.Counter
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the collectors and initializes the recorder.
// Must be called once at startup.
func Init(database *db.DB) {
	recorderOnce.Do(func() {
		recorder = &Recorder{
			db: database,
			slugAttempts: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "teampages_slug_allocation_attempts_total",
				Help: "Total slug reservation attempts",
			}),
			slugCollisions: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "teampages_slug_allocation_collisions_total",
				Help: "Total slug reservation collisions that forced a retry",
			}),
			authzCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "teampages_authz_cache_hits_total",
				Help: "Admin checks answered from the cache",
			}),
			authzCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "teampages_authz_cache_misses_total",
				Help: "Admin checks that fell through to the database",
			}),
		}
		prometheus.MustRegister(
			&PageViewCollector{db: database},
			recorder.slugAttempts,
			recorder.slugCollisions,
			recorder.authzCacheHits,
			recorder.authzCacheMiss,
		)
	})
}

// RecordPageView asynchronously records a slug lookup outcome.
func RecordPageView(slug, outcome string) {
	if recorder == nil {
		return
	}
	go func() {
		if err := recorder.db.IncrementPageView(context.Background(), slug, outcome); err != nil {
			slog.Error("failed to record page view", "slug", slug, "outcome", outcome, "error", err)
		}
	}()
}

// RecordSlugAttempt counts one slug reservation attempt.
func RecordSlugAttempt() {
	if recorder != nil {
		recorder.slugAttempts.Inc()
	}
}

// RecordSlugCollision counts one reservation collision.
func RecordSlugCollision() {
	if recorder != nil {
		recorder.slugCollisions.Inc()
	}
}

// RecordAuthzCacheHit counts an admin check answered from the cache.
func RecordAuthzCacheHit() {
	if recorder != nil {
		recorder.authzCacheHits.Inc()
	}
}

// RecordAuthzCacheMiss counts an admin check that hit the database.
func RecordAuthzCacheMiss() {
	if recorder != nil {
		recorder.authzCacheMiss.Inc()
	}
}
