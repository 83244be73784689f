package benchmarks_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"minerperf/benchmarks"
	"minerperf/config"
	"minerperf/counterclnt"
)

//
// Fakes standing in for the mining cluster and the counter client.
//

type deploy struct {
	count      int
	difficulty int
}

type fakeCluster struct {
	deploys []deploy
	stops   int
	failAt  int // 1-based deploy call that fails; 0 never fails
}

func (fc *fakeCluster) Deploy(ctx context.Context, count, difficulty int) error {
	fc.deploys = append(fc.deploys, deploy{count, difficulty})
	if len(fc.deploys) == fc.failAt {
		return errors.New("make deploy_miner: exit status 2")
	}
	return nil
}

func (fc *fakeCluster) Stop(ctx context.Context) error {
	fc.stops++
	return errors.New("make stop_miner: exit status 1")
}

// fakeOracle returns a chain length that grows by step on every
// successful read, after nfail unavailable reads.
type fakeOracle struct {
	nfail int
	step  int64
	clen  int64
	calls int
	addrs map[string]int
	down  bool
}

func newFakeOracle(nfail int, step int64) *fakeOracle {
	return &fakeOracle{nfail: nfail, step: step, addrs: make(map[string]int)}
}

func (fo *fakeOracle) ChainLength(ctx context.Context, addr string, timeout time.Duration) counterclnt.Reading {
	fo.calls++
	fo.addrs[addr]++
	if fo.down || fo.calls <= fo.nfail {
		return counterclnt.Unavailable()
	}
	fo.clen += fo.step
	return counterclnt.Value(fo.clen)
}

var pool = []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}

func baseConfig() *benchmarks.ExperimentConfig {
	return &benchmarks.ExperimentConfig{
		Duration:     0,
		Port:         8001,
		ReadyTimeout: time.Second,
		PollInterval: time.Millisecond,
	}
}

func newParams(t *testing.T) *config.Params {
	p, err := config.NewParams("")
	require.Nil(t, err)
	return p
}

func newSweep(t *testing.T, plan *benchmarks.SweepPlan, base *benchmarks.ExperimentConfig, stopBetween bool, fc *fakeCluster, fo *fakeOracle) (*benchmarks.Sweep, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	r := benchmarks.NewRunner(fo, pool, newParams(t), buf)
	return benchmarks.NewSweep(plan, base, stopBetween, fc, r, buf), buf
}
