package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Noctowl/datasets"
	"github.com/UnownHash/Noctowl/map_config"
	"github.com/UnownHash/Noctowl/render"
	"github.com/UnownHash/Noctowl/stats_collector"
)

// PathsFunc resolves the input locations for a job.
type PathsFunc func() (datasets.Paths, error)

// FailedMapsError lists the outputs of the maps that could not be rendered.
type FailedMapsError struct {
	Outputs []string
	Total   int
}

func (e *FailedMapsError) Error() string {
	return fmt.Sprintf("%d of %d map(s) failed: %s", len(e.Outputs), e.Total, strings.Join(e.Outputs, ", "))
}

type Summary struct {
	Rendered int
	Skipped  int
	Failed   int
}

type MapRunner struct {
	logger   *logrus.Logger
	renderer *render.Renderer
	stats    stats_collector.StatsCollector
	paths    PathsFunc
}

// RenderAll renders the jobs in order. A job whose inputs are not configured
// is skipped, a failing job is logged and the rest still run. The returned
// error is a *FailedMapsError when any job failed.
func (runner *MapRunner) RenderAll(ctx context.Context, jobs []map_config.MapConfig) (Summary, error) {
	var (
		summary Summary
		failed  []string
	)

	defer func() {
		if err := runner.stats.Flush(); err != nil {
			runner.logger.Warnf("MapRunner: %v", err)
		}
	}()

	for idx, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		runner.logger.Infof("MapRunner: [%d/%d] rendering %s", idx+1, len(jobs), job.String())

		paths, err := runner.paths()
		if err != nil {
			var missingErr *datasets.MissingPathsError
			if errors.As(err, &missingErr) {
				runner.logger.Errorf("MapRunner: skipping '%s': %v", job.Title, err)
				runner.stats.AddMapSkipped()
				summary.Skipped++
				continue
			}
			runner.logger.Errorf("MapRunner: '%s' failed: %v", job.Title, err)
			runner.stats.AddMapFailed()
			summary.Failed++
			failed = append(failed, job.Output)
			continue
		}

		result, err := runner.renderer.Render(ctx, job, paths)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			runner.logger.Errorf("MapRunner: '%s' failed: %v", job.Title, err)
			runner.stats.AddMapFailed()
			summary.Failed++
			failed = append(failed, job.Output)
			continue
		}

		if len(result.UnmatchedCountries) > 0 {
			runner.logger.Warnf("MapRunner: '%s': no features for %s", job.Title, strings.Join(result.UnmatchedCountries, ", "))
		}
		runner.logger.Infof("MapRunner: saved map to '%s' (%d feature(s), %s)", result.Output, result.FeaturesDrawn, result.Duration.Round(time.Millisecond))
		runner.stats.AddMapRendered(result.Duration)
		runner.stats.AddFeaturesDrawn(uint64(result.FeaturesDrawn))
		summary.Rendered++
	}

	runner.logger.Infof("MapRunner: %d rendered, %d skipped, %d failed", summary.Rendered, summary.Skipped, summary.Failed)

	if len(failed) > 0 {
		return summary, &FailedMapsError{Outputs: failed, Total: len(jobs)}
	}
	return summary, nil
}

func NewMapRunner(logger *logrus.Logger, renderer *render.Renderer, stats stats_collector.StatsCollector, paths PathsFunc) *MapRunner {
	if paths == nil {
		paths = datasets.LoadPaths
	}
	return &MapRunner{
		logger:   logger,
		renderer: renderer,
		stats:    stats,
		paths:    paths,
	}
}
