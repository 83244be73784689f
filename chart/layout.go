// Package chart renders a sweep as a grouped bar chart: one group per
// difficulty, one bar per worker count.
package chart

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"

	"minerperf/benchresults"
	"minerperf/config"
)

var (
	ErrNoCounts       = fmt.Errorf("%w: no counts provided", config.ErrConfig)
	ErrNoDifficulties = fmt.Errorf("%w: no difficulties provided", config.ErrConfig)
)

// Series holds the bar heights of one worker count, one per difficulty.
type Series struct {
	Count   int
	Heights []int64
}

type Layout struct {
	Difficulties []int
	Counts       []int
	Series       []Series
}

// NewLayout projects res onto the grid given by counts and difficulties.
// Grid points missing from res get height 0.
func NewLayout(res *benchresults.Results, counts, difficulties []int) (*Layout, error) {
	if len(counts) == 0 {
		return nil, ErrNoCounts
	}
	if len(difficulties) == 0 {
		return nil, ErrNoDifficulties
	}
	l := &Layout{
		Difficulties: slices.Clone(difficulties),
		Counts:       slices.Clone(counts),
		Series:       make([]Series, 0, len(counts)),
	}
	for _, c := range counts {
		s := Series{Count: c, Heights: make([]int64, len(difficulties))}
		for i, d := range difficulties {
			if r, ok := res.Lookup(d, c); ok {
				s.Heights[i] = r.BlocksMined
			}
		}
		l.Series = append(l.Series, s)
	}
	return l, nil
}

// Height returns the bar height of count index ci at difficulty index di.
func (l *Layout) Height(ci, di int) int64 {
	return l.Series[ci].Heights[di]
}

// BarWidth splits groupWidth, in category units, evenly over the counts,
// so a group never grows wider than groupWidth.
func (l *Layout) BarWidth(groupWidth float64) float64 {
	return groupWidth / float64(len(l.Counts))
}

// Offset returns the center of bar ci relative to its group center.
func (l *Layout) Offset(ci int, groupWidth float64) float64 {
	return -groupWidth/2 + (float64(ci)+0.5)*l.BarWidth(groupWidth)
}

func Label(h int64) string {
	return strconv.FormatInt(h, 10)
}

// LabelY returns where the annotation of a bar of height h sits. Bars of
// height 0 or less have no extent on a log axis, so their label sits at
// zeroY.
func LabelY(h int64, zeroY float64) float64 {
	if h > 0 {
		return float64(h)
	}
	return zeroY
}
