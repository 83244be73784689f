package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"minerperf/benchresults"
	"minerperf/config"
	db "minerperf/debug"
)

// bars draws one Series. Geometry is in data units: category i spans
// [i-0.5, i+0.5] and its group spans groupWidth around i.
type bars struct {
	heights    []int64
	index      int
	layout     *Layout
	groupWidth float64
	floor      float64
	zeroY      float64
	fontSize   vg.Length
	color      color.Color
}

// span returns the left edge, center and right edge of the bar at
// difficulty index i.
func (b *bars) span(i int) (float64, float64, float64) {
	mid := float64(i) + b.layout.Offset(b.index, b.groupWidth)
	hw := b.layout.BarWidth(b.groupWidth) / 2
	return mid - hw, mid, mid + hw
}

func (b *bars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	sty := plt.Y.Tick.Label
	sty.Font.Size = b.fontSize
	sty.XAlign = text.XCenter
	sty.YAlign = text.YBottom
	sty.Rotation = 0
	y0 := trY(b.floor)
	for i, h := range b.heights {
		lo, mid, hi := b.span(i)
		l, x, r := trX(lo), trX(mid), trX(hi)
		// Bars of height 0 or less are a stub up to their label.
		y1 := trY(LabelY(h, b.zeroY))
		pts := []vg.Point{{X: l, Y: y0}, {X: l, Y: y1}, {X: r, Y: y1}, {X: r, Y: y0}}
		c.FillPolygon(b.color, c.ClipPolygonY(pts))
		c.FillText(sty, vg.Point{X: x, Y: y1}, Label(h))
	}
}

func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	hs := make([]float64, len(b.heights))
	for i, h := range b.heights {
		hs[i] = float64(h)
	}
	// Headroom for the annotations on a log axis.
	top := math.Max(floats.Max(hs), math.Max(b.zeroY, 1)) * 2
	return -0.5, float64(len(b.heights)) - 0.5, b.floor, top
}

func (b *bars) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(b.color, c.ClipPolygonY(pts))
}

// NewPlot builds the chart for l.
func NewPlot(l *Layout, title string, p *config.Params) *plot.Plot {
	plt := plot.New()
	plt.Title.Text = title
	plt.X.Label.Text = "difficulty"
	plt.Y.Label.Text = "blocks mined (log scale)"
	plt.Y.Scale = plot.LogScale{}
	plt.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	plt.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Width = vg.Points(0.6)
	plt.Add(grid)

	for _, b := range newBars(l, p) {
		plt.Add(b)
		plt.Legend.Add(fmt.Sprintf("miners=%d", b.layout.Counts[b.index]), b)
	}
	names := make([]string, len(l.Difficulties))
	for i, d := range l.Difficulties {
		names[i] = strconv.Itoa(d)
	}
	plt.NominalX(names...)
	return plt
}

func newBars(l *Layout, p *config.Params) []*bars {
	bs := make([]*bars, len(l.Series))
	for i, s := range l.Series {
		bs[i] = &bars{
			heights:    s.Heights,
			index:      i,
			layout:     l,
			groupWidth: p.Chart.GROUP_WIDTH,
			floor:      p.Chart.FLOOR,
			zeroY:      p.Chart.ZERO_LABEL_Y,
			fontSize:   vg.Points(p.Chart.LABEL_FONT_PT),
			color:      plotutil.Color(i),
		}
	}
	return bs
}

// Render draws the sweep and writes it as a PNG to pn.
func Render(res *benchresults.Results, counts, difficulties []int, title string, p *config.Params, pn string) error {
	l, err := NewLayout(res, counts, difficulties)
	if err != nil {
		return err
	}
	plt := NewPlot(l, title, p)
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(p.Chart.WIDTH_IN)*vg.Inch, vg.Length(p.Chart.HEIGHT_IN)*vg.Inch),
		vgimg.UseDPI(p.Chart.DPI),
	)
	plt.Draw(draw.New(c))
	err = benchresults.WriteFileAtomic(pn, func(w io.Writer) error {
		_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
		return err
	})
	if err != nil {
		return err
	}
	db.DPrintf(db.CHART, "Rendered %d counts x %d difficulties to %v", len(counts), len(difficulties), pn)
	return nil
}
