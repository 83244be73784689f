package benchmarks

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// ProgressLine is a single console line that each Render overwrites.
type ProgressLine struct {
	wr   io.Writer
	last int
}

func NewProgressLine(wr io.Writer) *ProgressLine {
	return &ProgressLine{wr: wr}
}

// Pad returns msg padded with spaces to the length of the previous line,
// so no stale characters survive, and remembers its length.
func (pl *ProgressLine) Pad(msg string) string {
	n := utf8.RuneCountInString(msg)
	if pl.last > n {
		msg += strings.Repeat(" ", pl.last-n)
		n = pl.last
	}
	pl.last = n
	return msg
}

func (pl *ProgressLine) Render(msg string) {
	fmt.Fprint(pl.wr, "\r"+pl.Pad(msg))
}

// Done terminates the line.
func (pl *ProgressLine) Done() {
	fmt.Fprint(pl.wr, "\n")
	pl.last = 0
}

func progressMsg(elapsed time.Duration, last, start int64) string {
	return fmt.Sprintf("  t=%4ds chain_length=%d (+%d)", int64(elapsed/time.Second), last, last-start)
}
