package stats_collector

import "time"

type StatsCollector interface {
	Name() string

	AddMapRendered(duration time.Duration)
	AddMapSkipped()
	AddMapFailed()
	AddFeaturesDrawn(num uint64)

	// Flush exports what was collected so far.
	Flush() error
}

type Config interface {
	GetPrometheusConfig() PrometheusConfig
}

func GetStatsCollector(cfg Config) StatsCollector {
	promConfig := cfg.GetPrometheusConfig()
	if !promConfig.Enabled {
		return NewNoopStatsCollector()
	}
	return NewPrometheusCollector(promConfig)
}
