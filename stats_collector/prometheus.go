package stats_collector

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	DEFAULT_PROMETHEUS_NAMESPACE = "noctowl"
)

type PrometheusConfig struct {
	Enabled bool `koanf:"enabled"`
	// node_exporter textfile collector target, written on every Flush
	Textfile   string    `koanf:"textfile"`
	BucketSize []float64 `koanf:"bucket_size"`
	Namespace  string    `koanf:"namespace"`
}

func (cfg *PrometheusConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Textfile == "" {
		return errors.New("metrics.textfile must be set when metrics are enabled")
	}
	return nil
}

func GetDefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		BucketSize: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		Namespace:  DEFAULT_PROMETHEUS_NAMESPACE,
	}
}

var _ StatsCollector = (*PrometheusCollector)(nil)

type PrometheusCollector struct {
	config   PrometheusConfig
	registry *prometheus.Registry

	mapsRendered  prometheus.Counter
	mapsSkipped   prometheus.Counter
	mapsFailed    prometheus.Counter
	featuresDrawn prometheus.Counter
	renderSeconds prometheus.Histogram
}

func (col *PrometheusCollector) Name() string {
	return "prometheus"
}

func (col *PrometheusCollector) AddMapRendered(duration time.Duration) {
	col.mapsRendered.Inc()
	col.renderSeconds.Observe(duration.Seconds())
}

func (col *PrometheusCollector) AddMapSkipped() {
	col.mapsSkipped.Inc()
}

func (col *PrometheusCollector) AddMapFailed() {
	col.mapsFailed.Inc()
}

func (col *PrometheusCollector) AddFeaturesDrawn(num uint64) {
	col.featuresDrawn.Add(float64(num))
}

func (col *PrometheusCollector) Flush() error {
	if col.config.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(col.config.Textfile, col.registry); err != nil {
		return fmt.Errorf("failed to write metrics to '%s': %w", col.config.Textfile, err)
	}
	return nil
}

func NewPrometheusCollector(config PrometheusConfig) StatsCollector {
	ns := config.Namespace
	if ns == "" {
		ns = DEFAULT_PROMETHEUS_NAMESPACE
	}
	buckets := config.BucketSize
	if len(buckets) == 0 {
		buckets = GetDefaultPrometheusConfig().BucketSize
	}

	registry := prometheus.NewRegistry()
	collector := &PrometheusCollector{
		config:   config,
		registry: registry,
		mapsRendered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "maps_rendered_total",
				Help:      "Total number of map images written",
			},
		),
		mapsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "maps_skipped_total",
				Help:      "Total number of maps not drawn because input paths were not configured",
			},
		),
		mapsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "maps_failed_total",
				Help:      "Total number of maps that failed to render",
			},
		),
		featuresDrawn: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "features_drawn_total",
				Help:      "Total number of vector features drawn inside a map view",
			},
		),
		renderSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "render_duration_seconds",
				Help:      "Time taken to render one map",
				Buckets:   buckets,
			},
		),
	}

	processOpts := collectors.ProcessCollectorOpts{
		Namespace: ns,
	}

	registry.MustRegister(
		collectors.NewProcessCollector(processOpts),
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(
				collectors.MetricsGC,
				collectors.MetricsMemory,
			),
		),
		collector.mapsRendered,
		collector.mapsSkipped,
		collector.mapsFailed,
		collector.featuresDrawn,
		collector.renderSeconds,
	)

	return collector
}
