// Package benchresults holds the per-grid-point results of a sweep and
// writes them out.
package benchresults

import (
	"fmt"
	"time"
)

// Timestamp layout of StartedAt and EndedAt.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// RunResult is the measurement of one grid point. It is built once, when
// the point finishes, and never changed.
type RunResult struct {
	Count            int      `json:"count"`
	Difficulty       int      `json:"difficulty"`
	DurationSec      int      `json:"duration_sec"`
	IPs              []string `json:"ips"`
	StartChainLength int64    `json:"start_chain_length"`
	EndChainLength   int64    `json:"end_chain_length"`
	BlocksMined      int64    `json:"blocks_mined"`
	DeployElapsedSec float64  `json:"deploy_elapsed_sec"`
	StartedAt        string   `json:"started_at"`
	EndedAt          string   `json:"ended_at"`
}

func NewRunResult(count, difficulty int, dur time.Duration, ips []string, start, end int64, deploy time.Duration, startedAt, endedAt time.Time) RunResult {
	return RunResult{
		Count:            count,
		Difficulty:       difficulty,
		DurationSec:      int(dur / time.Second),
		IPs:              append([]string(nil), ips...),
		StartChainLength: start,
		EndChainLength:   end,
		BlocksMined:      end - start,
		DeployElapsedSec: deploy.Seconds(),
		StartedAt:        startedAt.UTC().Format(TimeLayout),
		EndedAt:          endedAt.UTC().Format(TimeLayout),
	}
}

func (r RunResult) String() string {
	return fmt.Sprintf("blocks_mined=%d (chain_length %d -> %d), deploy_elapsed=%.1fs", r.BlocksMined, r.StartChainLength, r.EndChainLength, r.DeployElapsedSec)
}

// Results is the ordered collection of a sweep's results, in execution
// order.
type Results struct {
	rs []RunResult
}

func NewResults(n int) *Results {
	return &Results{rs: make([]RunResult, 0, n)}
}

// Append adds r and returns its index.
func (res *Results) Append(r RunResult) int {
	res.rs = append(res.rs, r)
	return len(res.rs) - 1
}

func (res *Results) Len() int {
	return len(res.rs)
}

func (res *Results) Get(i int) RunResult {
	return res.rs[i]
}

// All returns a copy of the results, in order.
func (res *Results) All() []RunResult {
	return append([]RunResult(nil), res.rs...)
}

// Lookup returns the result for (difficulty, count), if any.
func (res *Results) Lookup(difficulty, count int) (RunResult, bool) {
	for _, r := range res.rs {
		if r.Difficulty == difficulty && r.Count == count {
			return r, true
		}
	}
	return RunResult{}, false
}
