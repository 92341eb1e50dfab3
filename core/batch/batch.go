// Package batch - Parallel tabulation of many configurations
// Fans configurations out over a bounded worker pool that shares one
// immutable catalog, then gathers reports back in input order.
package batch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"memarea/core/tabulate"
	"memarea/core/types"
)

// Runner tabulates configurations concurrently
type Runner struct {
	tab *tabulate.Tabulator
	log *zap.Logger

	// Workers bounds concurrent tabulations; <= 0 means GOMAXPROCS
	Workers int

	// ContinueOnError skips failed configurations instead of aborting
	ContinueOnError bool

	// OnDone, if set, is called once per finished configuration. Calls are
	// serialized.
	OnDone func(cfg *types.Configuration, err error)
}

// Failure records a configuration that could not be tabulated
type Failure struct {
	Configuration string
	Err           error
}

// Result is the outcome of one batch
type Result struct {
	// RunID uniquely identifies the batch
	RunID string

	// Reports holds successful reports in input order
	Reports []*types.Report

	// Failures holds skipped configurations in input order
	Failures []Failure

	StartedAt time.Time
	Duration  time.Duration
}

// OK reports whether every configuration succeeded
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// NewRunner creates a runner over tab
func NewRunner(tab *tabulate.Tabulator, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{tab: tab, log: log}
}

// Run tabulates configs. In abort mode the first failure cancels remaining
// work and is returned; otherwise failures are collected in the result.
func (r *Runner) Run(ctx context.Context, configs []*types.Configuration) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := r.log.With(zap.String("run_id", result.RunID))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	reports := make([]*types.Report, len(configs))
	errs := make([]error, len(configs))

	var doneMu sync.Mutex
	done := func(cfg *types.Configuration, err error) {
		if r.OnDone == nil {
			return
		}
		doneMu.Lock()
		defer doneMu.Unlock()
		r.OnDone(cfg, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := r.tab.Tabulate(cfg)
			done(cfg, err)
			if err != nil {
				errs[i] = err
				if r.ContinueOnError {
					log.Error("skipping configuration", zap.String("configuration", cfg.Name), zap.Error(err))
					return nil
				}
				return err
			}
			reports[i] = report
			return nil
		})
	}

	waitErr := g.Wait()
	result.Duration = time.Since(result.StartedAt)

	if waitErr != nil && !r.ContinueOnError {
		return nil, waitErr
	}

	for i, cfg := range configs {
		switch {
		case reports[i] != nil:
			result.Reports = append(result.Reports, reports[i])
		case errs[i] != nil:
			result.Failures = append(result.Failures, Failure{Configuration: cfg.Name, Err: errs[i]})
		}
	}

	log.Debug("batch complete",
		zap.Int("reports", len(result.Reports)),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("duration", result.Duration),
	)
	return result, waitErr
}
