package benchmarks_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerperf/benchmarks"
	"minerperf/cluster"
	"minerperf/config"
	"minerperf/util/retry"
)

func TestPlanOrder(t *testing.T) {
	plan := benchmarks.NewSweepPlan([]int{3, 4}, []int{1, 3})
	assert.Equal(t, []benchmarks.Tpoint{
		{Difficulty: 3, Count: 1},
		{Difficulty: 3, Count: 3},
		{Difficulty: 4, Count: 1},
		{Difficulty: 4, Count: 3},
	}, plan.Points())
}

func TestPlanValidate(t *testing.T) {
	assert.Nil(t, benchmarks.NewSweepPlan([]int{3}, []int{1, 3}).Validate(3))
	for _, plan := range []*benchmarks.SweepPlan{
		benchmarks.NewSweepPlan(nil, []int{1}),
		benchmarks.NewSweepPlan([]int{3}, nil),
		benchmarks.NewSweepPlan([]int{3}, []int{1, 4}),
		benchmarks.NewSweepPlan([]int{0}, []int{1}),
		benchmarks.NewSweepPlan([]int{3}, []int{1, 1}),
	} {
		err := plan.Validate(3)
		assert.True(t, errors.Is(err, config.ErrConfig), "plan %v err %v", plan, err)
	}
}

func TestSweepGrid(t *testing.T) {
	fc := &fakeCluster{}
	fo := newFakeOracle(0, 10)
	s, out := newSweep(t, benchmarks.NewSweepPlan([]int{3, 4}, []int{1, 3}), baseConfig(), false, fc, fo)
	res, err := s.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, 4, res.Len())
	want := [][2]int{{3, 1}, {3, 3}, {4, 1}, {4, 3}}
	for i, w := range want {
		r := res.Get(i)
		assert.Equal(t, w[0], r.Difficulty)
		assert.Equal(t, w[1], r.Count)
		assert.Equal(t, r.EndChainLength-r.StartChainLength, r.BlocksMined)
		assert.Equal(t, pool[:r.Count], r.IPs)
	}
	assert.Equal(t, []deploy{{1, 3}, {3, 3}, {1, 4}, {3, 4}}, fc.deploys)
	assert.Equal(t, 1, fc.stops)
	assert.Equal(t, 4, strings.Count(out.String(), "=== Running:"))
	assert.Equal(t, 4, strings.Count(out.String(), "Result: blocks_mined=10"))
	// Only the observer is ever sampled.
	assert.Equal(t, 1, len(fo.addrs))
	assert.Equal(t, 8, fo.addrs["10.0.0.1:8001"])
}

func TestSweepStopBetween(t *testing.T) {
	fc := &fakeCluster{}
	s, _ := newSweep(t, benchmarks.NewSweepPlan([]int{3, 4}, []int{1, 3}), baseConfig(), true, fc, newFakeOracle(0, 1))
	res, err := s.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, 4, res.Len())
	// Teardown failures are ignored; one per point plus the final one.
	assert.Equal(t, 5, fc.stops)
}

func TestSweepDeployFailure(t *testing.T) {
	fc := &fakeCluster{failAt: 2}
	s, _ := newSweep(t, benchmarks.NewSweepPlan([]int{3, 4}, []int{1, 3}), baseConfig(), false, fc, newFakeOracle(0, 5))
	res, err := s.Run(context.Background())
	require.NotNil(t, err)
	var serr *benchmarks.StageErr
	require.True(t, errors.As(err, &serr), "err %v", err)
	assert.Equal(t, benchmarks.Tstage(benchmarks.STAGE_DEPLOY), serr.Stage)
	assert.Equal(t, 3, serr.Count)
	assert.Equal(t, 3, serr.Difficulty)
	assert.Equal(t, 1, fc.stops)
	assert.Equal(t, 2, len(fc.deploys))
	// The point before the failure is kept.
	assert.Equal(t, 1, res.Len())
}

func TestSweepReadyTimeout(t *testing.T) {
	fc := &fakeCluster{}
	fo := newFakeOracle(0, 1)
	fo.down = true
	base := baseConfig()
	base.ReadyTimeout = 50 * time.Millisecond
	s, _ := newSweep(t, benchmarks.NewSweepPlan([]int{3}, []int{1, 3}), base, false, fc, fo)
	res, err := s.Run(context.Background())
	assert.True(t, errors.Is(err, retry.ErrTimeout), "err %v", err)
	var serr *benchmarks.StageErr
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, benchmarks.Tstage(benchmarks.STAGE_READY_START), serr.Stage)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 1, len(fc.deploys))
	assert.Equal(t, 1, fc.stops)
}

func TestSweepConfigError(t *testing.T) {
	fc := &fakeCluster{}
	s, _ := newSweep(t, benchmarks.NewSweepPlan([]int{3}, []int{1, 4}), baseConfig(), false, fc, newFakeOracle(0, 1))
	_, err := s.Run(context.Background())
	assert.True(t, errors.Is(err, config.ErrConfig), "err %v", err)
	// No cluster interaction at all.
	assert.Equal(t, 0, len(fc.deploys))
	assert.Equal(t, 0, fc.stops)
}

func TestSweepCanceled(t *testing.T) {
	fc := &fakeCluster{}
	base := baseConfig()
	base.Duration = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := newSweep(t, benchmarks.NewSweepPlan([]int{3}, []int{1}), base, false, fc, newFakeOracle(0, 1))
	_, err := s.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "err %v", err)
	assert.Equal(t, 1, fc.stops)
}

func TestRunnerDirect(t *testing.T) {
	fc := &fakeCluster{}
	fo := newFakeOracle(2, 7)
	r := benchmarks.NewRunner(fo, pool, newParams(t), &strings.Builder{})
	l := cluster.Acquire(fc)
	cfg := baseConfig().WithPoint(benchmarks.Tpoint{Difficulty: 5, Count: 2})
	res, err := r.Run(context.Background(), l, cfg)
	require.Nil(t, err)
	assert.Equal(t, int64(7), res.StartChainLength)
	assert.Equal(t, int64(14), res.EndChainLength)
	assert.Equal(t, int64(7), res.BlocksMined)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, res.IPs)
	assert.NotNil(t, l.Release(context.Background()))
	assert.Equal(t, 1, fc.stops)
}
