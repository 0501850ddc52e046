package stats_collector

import "time"

var _ StatsCollector = (*noopCollector)(nil)

type noopCollector struct {
}

func (col *noopCollector) Name() string                 { return "no-op" }
func (col *noopCollector) AddMapRendered(time.Duration) {}
func (col *noopCollector) AddMapSkipped()               {}
func (col *noopCollector) AddMapFailed()                {}
func (col *noopCollector) AddFeaturesDrawn(num uint64)  {}
func (col *noopCollector) Flush() error                 { return nil }

func NewNoopStatsCollector() StatsCollector {
	return &noopCollector{}
}
