package core

import (
	"time"

	"github.com/toolshed/shedmon/pkg/metrics"
	"github.com/toolshed/shedmon/pkg/model"
)

// nil-safe recording of reconciliation metrics

func (s Settings) observeRevision(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Revisions.WithLabelValues(result).Inc()
}

func (s Settings) observeComparison(c model.Comparison) {
	if s.metrics == nil {
		return
	}
	s.metrics.Comparisons.WithLabelValues(c.String()).Inc()
}

func (s Settings) observeSnapshot(op string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Snapshots.WithLabelValues(op).Inc()
}

func (s Settings) observeInvalidFiles(n int) {
	if s.metrics == nil || n == 0 {
		return
	}
	s.metrics.InvalidFiles.Add(float64(n))
}

func (s Settings) startRun() func(error) {
	if s.metrics == nil {
		return func(error) {}
	}
	start := time.Now()
	s.metrics.InFlight.Inc()

	return func(err error) {
		s.metrics.InFlight.Dec()
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
		}
		s.metrics.Runs.WithLabelValues(outcome).Inc()
		s.metrics.Duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}
