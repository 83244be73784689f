package benchmarks

import (
	"context"
	"io"
	"time"

	"minerperf/benchresults"
	"minerperf/cluster"
	"minerperf/config"
	"minerperf/counterclnt"
	db "minerperf/debug"
	"minerperf/util/retry"
)

// Runner measures one grid point at a time against a node pool.
type Runner struct {
	o               counterclnt.Oracle
	addrs           []string
	bounds          retry.Tbounds
	progressTimeout time.Duration
	wr              io.Writer
}

func NewRunner(o counterclnt.Oracle, addrs []string, p *config.Params, wr io.Writer) *Runner {
	return &Runner{
		o:               o,
		addrs:           addrs,
		bounds:          retry.Tbounds{Min: p.Client.MIN_CALL_TIMEOUT, Max: p.Client.MAX_CALL_TIMEOUT},
		progressTimeout: p.Client.PROGRESS_TIMEOUT,
		wr:              wr,
	}
}

// observer returns the nodes used by a run of count workers and the one
// node whose counter is sampled.
func (r *Runner) observer(count int) ([]string, string, error) {
	if count <= 0 || count > len(r.addrs) {
		return nil, "", config.Configf("requested COUNT=%d but only %d node addresses available", count, len(r.addrs))
	}
	ips := r.addrs[:count]
	return ips, ips[0], nil
}

// Run deploys cfg through l, waits for the observer, and measures how
// many blocks it mines over the window. Blocks mined while deploy was
// still starting workers are not counted.
func (r *Runner) Run(ctx context.Context, l *cluster.Lease, cfg *ExperimentConfig) (benchresults.RunResult, error) {
	var res benchresults.RunResult
	ips, obs, err := r.observer(cfg.Count)
	if err != nil {
		return res, err
	}
	startedAt := time.Now()

	deployLat, err := l.Deploy(ctx, cfg.Count, cfg.Difficulty)
	if err != nil {
		return res, newStageErr(STAGE_DEPLOY, cfg, err)
	}
	db.DPrintf(db.RUNNER, "Deployed %v in %v", cfg, deployLat)

	if err := retry.Sleep(ctx, cfg.Warmup); err != nil {
		return res, newStageErr(STAGE_WARMUP, cfg, err)
	}

	start, err := counterclnt.WaitChainLength(ctx, r.o, obs, cfg.Port, cfg.ReadyTimeout, cfg.PollInterval, r.bounds)
	if err != nil {
		return res, newStageErr(STAGE_READY_START, cfg, err)
	}
	db.DPrintf(db.RUNNER, "Observer %v start chain_length %d", obs, start)

	if err := r.hold(ctx, cfg, counterclnt.Addr(obs, cfg.Port), start); err != nil {
		return res, newStageErr(STAGE_WINDOW, cfg, err)
	}

	end, err := counterclnt.WaitChainLength(ctx, r.o, obs, cfg.Port, cfg.ReadyTimeout, cfg.PollInterval, r.bounds)
	if err != nil {
		return res, newStageErr(STAGE_READY_END, cfg, err)
	}
	db.DPrintf(db.RUNNER, "Observer %v end chain_length %d", obs, end)

	return benchresults.NewRunResult(cfg.Count, cfg.Difficulty, cfg.Duration, ips, start, end, deployLat, startedAt, time.Now()), nil
}

// hold waits out the measurement window, optionally reporting the
// observer's chain length on a single overwritten line.
func (r *Runner) hold(ctx context.Context, cfg *ExperimentConfig, addr string, start int64) error {
	if !cfg.sampleProgress() {
		return retry.Sleep(ctx, cfg.Duration)
	}
	pl := NewProgressLine(r.wr)
	defer pl.Done()
	t0 := time.Now()
	deadline := t0.Add(cfg.Duration)
	last := start
	pl.Render(progressMsg(0, last, start))
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		if err := retry.Sleep(ctx, min(cfg.ProgressInterval, remaining)); err != nil {
			return err
		}
		elapsed := time.Since(t0)
		if rd := r.o.ChainLength(ctx, addr, r.progressTimeout); rd.OK {
			last = rd.Len
		}
		db.DPrintf(db.PROGRESS, "%v t=%v chain_length=%d", addr, elapsed, last)
		pl.Render(progressMsg(elapsed, last, start))
	}
}
