package benchresults_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerperf/benchresults"
)

var t0 = time.Date(2026, 10, 14, 9, 30, 0, 123456000, time.UTC)

func mkResults() *benchresults.Results {
	res := benchresults.NewResults(3)
	res.Append(benchresults.NewRunResult(1, 3, 60*time.Second, []string{"10.0.0.1"}, 5, 25, 1500*time.Millisecond, t0, t0.Add(62*time.Second)))
	res.Append(benchresults.NewRunResult(3, 3, 60*time.Second, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, 7, 67, 4500*time.Millisecond, t0.Add(70*time.Second), t0.Add(140*time.Second)))
	res.Append(benchresults.NewRunResult(1, 4, 60*time.Second, []string{"10.0.0.1"}, 30, 28, 1234567*time.Microsecond, t0.Add(150*time.Second), t0.Add(215*time.Second)))
	return res
}

func TestNewRunResult(t *testing.T) {
	r := benchresults.NewRunResult(3, 4, 60*time.Second, []string{"b", "a"}, 10, 42, 2*time.Second, t0, t0.Add(time.Minute))
	assert.Equal(t, int64(32), r.BlocksMined)
	assert.Equal(t, 60, r.DurationSec)
	assert.Equal(t, 2.0, r.DeployElapsedSec)
	assert.Equal(t, []string{"b", "a"}, r.IPs)
	assert.Equal(t, "2026-10-14T09:30:00.123456Z", r.StartedAt)
	assert.Equal(t, "2026-10-14T09:31:00.123456Z", r.EndedAt)
}

func TestNegativeBlocksKept(t *testing.T) {
	r := mkResults().Get(2)
	assert.Equal(t, int64(-2), r.BlocksMined)
}

func TestLookup(t *testing.T) {
	res := mkResults()
	r, ok := res.Lookup(3, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(60), r.BlocksMined)
	_, ok = res.Lookup(4, 3)
	assert.False(t, ok)
}

func TestJSONRoundTrip(t *testing.T) {
	res := mkResults()
	pn := filepath.Join(t.TempDir(), "results.json")
	require.Nil(t, benchresults.WriteJSON(pn, res))
	res2, err := benchresults.ReadJSON(pn)
	require.Nil(t, err)
	assert.Equal(t, res.All(), res2.All())
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, res2.Get(1).IPs)

	// Deterministic.
	b1, err := os.ReadFile(pn)
	require.Nil(t, err)
	require.Nil(t, benchresults.WriteJSON(pn, res2))
	b2, err := os.ReadFile(pn)
	require.Nil(t, err)
	assert.Equal(t, string(b1), string(b2))
	assert.True(t, strings.Contains(string(b1), `"start_chain_length": 7`))
}

func TestCSV(t *testing.T) {
	dir := t.TempDir()
	pn := filepath.Join(dir, "results.csv")
	require.Nil(t, benchresults.WriteCSV(pn, mkResults()))
	f, err := os.Open(pn)
	require.Nil(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.Nil(t, err)
	require.Equal(t, 4, len(rows))
	assert.Equal(t, benchresults.CSVHeader, rows[0])
	assert.Equal(t, []string{"3", "3", "60", "7", "67", "60", "4.5", "10.0.0.1,10.0.0.2,10.0.0.3", "2026-10-14T09:31:10.123456Z", "2026-10-14T09:32:20.123456Z"}, rows[2])

	// No temp files left behind.
	ents, err := os.ReadDir(dir)
	require.Nil(t, err)
	assert.Equal(t, 1, len(ents))
}

func TestNewRunDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "logs", "perf")
	d1, err := benchresults.NewRunDir(base, t0)
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(base, "20261014_093000"), d1)
	d2, err := benchresults.NewRunDir(base, t0)
	require.Nil(t, err)
	assert.NotEqual(t, d1, d2)
	assert.True(t, strings.HasPrefix(filepath.Base(d2), "20261014_093000_"))
}

func TestSummarize(t *testing.T) {
	sums, err := benchresults.Summarize(mkResults())
	require.Nil(t, err)
	require.Equal(t, 2, len(sums))
	assert.Equal(t, 3, sums[0].Difficulty)
	assert.Equal(t, 2, sums[0].N)
	assert.Equal(t, 40.0, sums[0].Mean)
	assert.Equal(t, 60.0, sums[0].Max)
	assert.InDelta(t, 40.0/60.0, sums[0].BlocksPerS, 1e-9)
	assert.Equal(t, 4, sums[1].Difficulty)
	assert.Equal(t, -2.0, sums[1].Max)
	s := benchresults.SummaryString(sums)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(s), "\n")))
}

func TestSummarizeEmpty(t *testing.T) {
	sums, err := benchresults.Summarize(benchresults.NewResults(0))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(sums))
}
