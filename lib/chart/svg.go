package chart

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/icco/statlines/lib/timeline"
)

// yTickCount is the target number of horizontal gridlines.
const yTickCount = 5

// RenderSVG draws the columns as one line per player over the axis and
// writes the SVG document to w. Players are drawn in the given order so
// output is deterministic for a fixed table.
func RenderSVG(w io.Writer, axis *timeline.Axis, columns map[string][]float64, order []string, title string, style *Style) error {
	if style == nil {
		style = DefaultStyle()
	}

	width := style.Layout.Width
	height := style.Layout.Height
	plotLeft := style.Layout.MarginLeft
	plotTop := style.Layout.MarginTop
	plotWidth := width - plotLeft - style.Layout.MarginRight
	plotHeight := height - plotTop - style.Layout.MarginBottom

	maxVal := 0.0
	for _, name := range order {
		for _, v := range columns[name] {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	step := niceStep(maxVal / yTickCount)
	top := step * math.Ceil(maxVal/step)
	if top == 0 {
		top = step
	}

	xFor := func(i int) float64 {
		if axis.Len() <= 1 {
			return float64(plotLeft)
		}
		return float64(plotLeft) + float64(i)/float64(axis.Len()-1)*float64(plotWidth)
	}
	yFor := func(v float64) float64 {
		return float64(plotTop) + (1-v/top)*float64(plotHeight)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`+"\n", width, height, style.Colors.Background)

	// Title.
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="%s" font-size="%d" fill="%s" text-anchor="middle" font-weight="bold">%s</text>`+"\n",
		width/2, plotTop/2, style.Font.Family, style.Font.Size+4, style.Colors.Text, html.EscapeString(title))

	// Horizontal gridlines and y labels.
	for v := 0.0; v <= top+step/2; v += step {
		y := yFor(v)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			plotLeft, y, plotLeft+plotWidth, y, style.Colors.Grid)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-family="%s" font-size="%d" fill="%s" text-anchor="end">%s</text>`+"\n",
			plotLeft-8, y+4, style.Font.Family, style.Font.Size-1, style.Colors.Text, formatTick(v))
	}

	// Month boundaries as x ticks.
	for i, d := range axis.Dates() {
		if i != 0 && d.Day() != 1 {
			continue
		}
		x := xFor(i)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s" stroke-width="1"/>`+"\n",
			x, plotTop, x, plotTop+plotHeight, style.Colors.Grid)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-family="%s" font-size="%d" fill="%s" text-anchor="middle">%s</text>`+"\n",
			x, plotTop+plotHeight+20, style.Font.Family, style.Font.Size-1, style.Colors.Text, d.Format("Jan 2"))
	}

	// Axis lines.
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1.5"/>`+"\n",
		plotLeft, plotTop, plotLeft, plotTop+plotHeight, style.Colors.Axis)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1.5"/>`+"\n",
		plotLeft, plotTop+plotHeight, plotLeft+plotWidth, plotTop+plotHeight, style.Colors.Axis)

	// One polyline per player.
	for si, name := range order {
		values, ok := columns[name]
		if !ok {
			continue
		}
		color := style.Colors.Series[si%len(style.Colors.Series)]

		var points strings.Builder
		for i, v := range values {
			if i > 0 {
				points.WriteByte(' ')
			}
			fmt.Fprintf(&points, "%.1f,%.1f", xFor(i), yFor(v))
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`+"\n",
			color, points.String())
	}

	// Legend, top-left inside the plot.
	for si, name := range order {
		if _, ok := columns[name]; !ok {
			continue
		}
		color := style.Colors.Series[si%len(style.Colors.Series)]
		y := plotTop + 14 + si*(style.Font.Size+8)
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`+"\n",
			plotLeft+12, y-10, color)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="%s" font-size="%d" fill="%s">%s</text>`+"\n",
			plotLeft+30, y, style.Font.Family, style.Font.Size, style.Colors.Text, html.EscapeString(name))
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ChartTitle builds the standard comparison title for a chart.
func ChartTitle(stat string, season int, players []string) string {
	return fmt.Sprintf("Cumulative %s: %s (%d)", stat, strings.Join(players, " vs. "), season)
}

// niceStep rounds a raw tick interval up to a 1/2/5 multiple of a power
// of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag <= 1:
		return mag
	case raw/mag <= 2:
		return 2 * mag
	case raw/mag <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// formatTick drops the decimals on whole-number ticks so counting charts
// label cleanly while gauge charts keep their precision.
func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
