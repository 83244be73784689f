package benchmarks

import (
	"context"
	"fmt"
	"io"

	"minerperf/benchresults"
	"minerperf/cluster"
	db "minerperf/debug"
)

// Sweep runs every point of a plan, one at a time, against the one
// cluster it owns.
type Sweep struct {
	plan        *SweepPlan
	base        *ExperimentConfig
	stopBetween bool
	c           cluster.Cluster
	runner      *Runner
	wr          io.Writer
}

// NewSweep returns a sweep of plan. base supplies every experiment
// parameter except count and difficulty.
func NewSweep(plan *SweepPlan, base *ExperimentConfig, stopBetween bool, c cluster.Cluster, runner *Runner, wr io.Writer) *Sweep {
	return &Sweep{
		plan:        plan,
		base:        base,
		stopBetween: stopBetween,
		c:           c,
		runner:      runner,
		wr:          wr,
	}
}

func (s *Sweep) Validate() error {
	if err := s.plan.Validate(len(s.runner.addrs)); err != nil {
		return err
	}
	return s.base.validate()
}

// Run executes the plan. The cluster is stopped exactly once when Run
// returns, whatever happened. On a fatal point failure the remaining
// points are skipped, and Run returns the results collected so far
// together with the error.
func (s *Sweep) Run(ctx context.Context) (*benchresults.Results, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pts := s.plan.Points()
	res := benchresults.NewResults(len(pts))

	// Cleanup must run even if ctx was canceled.
	cleanupCtx := context.WithoutCancel(ctx)
	l := cluster.Acquire(s.c)
	defer l.Release(cleanupCtx)

	db.DPrintf(db.SWEEP, "Sweep %v base %v", s.plan, s.base)
	for i, pt := range pts {
		cfg := s.base.WithPoint(pt)
		fmt.Fprintf(s.wr, "\n=== Running: COUNT=%d, DIFFICULTY=%d, duration=%ds ===\n", cfg.Count, cfg.Difficulty, int64(cfg.Duration.Seconds()))
		r, err := s.runner.Run(ctx, l, cfg)
		if err != nil {
			db.DPrintf(db.SWEEP_ERR, "Abort at point %d/%d: %v", i+1, len(pts), err)
			return res, err
		}
		res.Append(r)
		fmt.Fprintf(s.wr, "Result: %v\n", r)
		if s.stopBetween {
			l.Reset(cleanupCtx)
		}
	}
	return res, nil
}
