package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/codewinder/contests/internal/metrics"
	"github.com/codewinder/contests/internal/model"
	"github.com/codewinder/contests/internal/source"
)

// SourceStatus is the per-source line of a Report.
type SourceStatus struct {
	Platform  model.Platform `json:"platform"`
	Status    source.Status  `json:"status"`
	Count     int            `json:"count"`
	Error     string         `json:"error,omitempty"`
	ElapsedMs int64          `json:"elapsedMs"`
}

// Report is one aggregation: the merged contests plus how each source fared.
type Report struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Contests    []model.Contest `json:"contests"`
	Sources     []SourceStatus  `json:"sources"`
}

// Coordinator fans out to every source and merges their contests.
type Coordinator struct {
	sources []source.Source
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New keeps sources in the given order; that order breaks start-time ties.
func New(logger *slog.Logger, m *metrics.Metrics, sources ...source.Source) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{sources: sources, metrics: m, logger: logger}
}

// Contests returns the merged upcoming contests, soonest first.
func (c *Coordinator) Contests(ctx context.Context) []model.Contest {
	return c.Collect(ctx).Contests
}

// Collect queries all sources concurrently and waits for every one of
// them. It cannot fail: a source that errors contributes nothing.
func (c *Coordinator) Collect(ctx context.Context) Report {
	start := time.Now()
	// Sources run to completion or their own timeout even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	results := make([]source.Result, len(c.sources))
	var wg sync.WaitGroup
	wg.Add(len(c.sources))
	for i, src := range c.sources {
		go func() {
			defer wg.Done()
			results[i] = src.Fetch(ctx)
		}()
	}
	wg.Wait()

	report := Report{
		GeneratedAt: start.UTC(),
		Contests:    make([]model.Contest, 0, 16),
		Sources:     make([]SourceStatus, 0, len(results)),
	}
	seen := make(map[string]struct{})
	for _, r := range results {
		st := SourceStatus{
			Platform:  r.Platform,
			Status:    r.Status,
			Count:     len(r.Contests),
			ElapsedMs: r.Elapsed.Milliseconds(),
		}
		if r.Err != nil {
			st.Error = r.Err.Error()
		}
		report.Sources = append(report.Sources, st)
		if r.Status != source.StatusDisabled {
			c.metrics.ObserveSource(string(r.Platform), string(r.Status), len(r.Contests), r.Elapsed)
		}

		for _, ct := range r.Contests {
			if _, dup := seen[ct.ID]; dup {
				c.logger.Debug("duplicate contest id dropped", "id", ct.ID)
				continue
			}
			seen[ct.ID] = struct{}{}
			report.Contests = append(report.Contests, ct)
		}
	}

	sort.SliceStable(report.Contests, func(i, j int) bool {
		return report.Contests[i].StartTime.Before(report.Contests[j].StartTime)
	})

	elapsed := time.Since(start)
	c.metrics.ObserveAggregate(len(report.Contests), elapsed)
	c.logger.Info("contests aggregated",
		"count", len(report.Contests),
		"sources", len(c.sources),
		"duration_ms", elapsed.Milliseconds(),
	)
	return report
}
