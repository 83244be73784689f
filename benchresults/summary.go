package benchresults

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
)

// DiffSummary aggregates the results of one difficulty across worker
// counts.
type DiffSummary struct {
	Difficulty int
	N          int
	Mean       float64
	Median     float64
	Max        float64
	BlocksPerS float64 // Mean blocks mined per second of window.
}

// Summarize groups results by difficulty, in first-seen order.
func Summarize(res *Results) ([]DiffSummary, error) {
	order := make([]int, 0)
	blocks := make(map[int][]float64)
	rates := make(map[int][]float64)
	for _, r := range res.rs {
		if _, ok := blocks[r.Difficulty]; !ok {
			order = append(order, r.Difficulty)
		}
		blocks[r.Difficulty] = append(blocks[r.Difficulty], float64(r.BlocksMined))
		if r.DurationSec > 0 {
			rates[r.Difficulty] = append(rates[r.Difficulty], float64(r.BlocksMined)/float64(r.DurationSec))
		}
	}
	sums := make([]DiffSummary, 0, len(order))
	for _, d := range order {
		data := stats.Float64Data(blocks[d])
		mean, err := stats.Mean(data)
		if err != nil {
			return nil, fmt.Errorf("mean difficulty %d: %v", d, err)
		}
		median, err := stats.Median(data)
		if err != nil {
			return nil, fmt.Errorf("median difficulty %d: %v", d, err)
		}
		mx, err := stats.Max(data)
		if err != nil {
			return nil, fmt.Errorf("max difficulty %d: %v", d, err)
		}
		s := DiffSummary{Difficulty: d, N: len(data), Mean: mean, Median: median, Max: mx}
		if len(rates[d]) > 0 {
			if s.BlocksPerS, err = stats.Mean(rates[d]); err != nil {
				return nil, fmt.Errorf("rate difficulty %d: %v", d, err)
			}
		}
		sums = append(sums, s)
	}
	return sums, nil
}

func SummaryString(sums []DiffSummary) string {
	var b strings.Builder
	b.WriteString("difficulty  points  mean_blocks  median_blocks  max_blocks  blocks/s\n")
	for _, s := range sums {
		fmt.Fprintf(&b, "%10d  %6d  %11s  %13s  %10s  %8.3f\n", s.Difficulty, s.N,
			humanize.CommafWithDigits(s.Mean, 1), humanize.CommafWithDigits(s.Median, 1),
			humanize.Comma(int64(s.Max)), s.BlocksPerS)
	}
	return b.String()
}
