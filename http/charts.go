package http

import (
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"
)

const (
	chartWidth   = 800
	chartHeight  = 320
	chartPadding = 48
)

type chartSeries struct {
	Label  string
	Color  string
	Values []*float64
}

type chart struct {
	Title string
	SVG   template.HTML
}

func valuesOf(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i := range xs {
		out[i] = &xs[i]
	}
	return out
}

func seriesBounds(series []chartSeries) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if v == nil {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
			ok = true
		}
	}
	if ok && lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi, ok
}

type plotArea struct {
	n      int
	lo, hi float64
}

func (p plotArea) x(i int) float64 {
	if p.n <= 1 {
		return chartPadding
	}
	return chartPadding + float64(i)*float64(chartWidth-2*chartPadding)/float64(p.n-1)
}

func (p plotArea) y(v float64) float64 {
	return chartHeight - chartPadding - (v-p.lo)/(p.hi-p.lo)*float64(chartHeight-2*chartPadding)
}

func svgOpen(b *strings.Builder, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="%s">`,
		chartWidth, chartHeight, template.HTMLEscapeString(title))
	fmt.Fprintf(b, `<rect width="%d" height="%d" fill="#fff"/>`, chartWidth, chartHeight)
}

func svgAxes(b *strings.Builder, p plotArea, dates []time.Time) {
	for i := 0; i <= 4; i++ {
		v := p.lo + (p.hi-p.lo)*float64(i)/4
		y := p.y(v)
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ddd" stroke-dasharray="4 4"/>`,
			chartPadding, y, chartWidth-chartPadding, y)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-size="10" text-anchor="end" fill="#555">%s</text>`,
			chartPadding-4, y+3, axisLabel(v))
	}
	if len(dates) > 0 {
		for _, i := range []int{0, len(dates) / 2, len(dates) - 1} {
			fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="10" text-anchor="middle" fill="#555">%s</text>`,
				p.x(i), chartHeight-chartPadding+16, dates[i].Format("2006-01-02"))
		}
	}
}

func axisLabel(v float64) string {
	switch {
	case math.Abs(v) >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e4:
		return fmt.Sprintf("%.0fK", v/1e3)
	}
	return fmt.Sprintf("%.2f", v)
}

func svgLegend(b *strings.Builder, series []chartSeries) {
	for i, s := range series {
		x := chartPadding + i*150
		fmt.Fprintf(b, `<rect x="%d" y="12" width="12" height="4" fill="%s"/>`, x, s.Color)
		fmt.Fprintf(b, `<text x="%d" y="18" font-size="11" fill="#333">%s</text>`, x+16, template.HTMLEscapeString(s.Label))
	}
}

// lineChart plots every series against the shared date axis. A nil value
// breaks the line.
func lineChart(title string, dates []time.Time, series ...chartSeries) chart {
	var b strings.Builder
	svgOpen(&b, title)

	lo, hi, ok := seriesBounds(series)
	if ok {
		p := plotArea{n: len(dates), lo: lo, hi: hi}
		svgAxes(&b, p, dates)
		for _, s := range series {
			var path strings.Builder
			pen := false
			for i, v := range s.Values {
				if v == nil {
					pen = false
					continue
				}
				cmd := "L"
				if !pen {
					cmd = "M"
				}
				fmt.Fprintf(&path, "%s%.1f %.1f ", cmd, p.x(i), p.y(*v))
				pen = true
			}
			if path.Len() > 0 {
				fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
					strings.TrimSpace(path.String()), s.Color)
			}
		}
		svgLegend(&b, series)
	}

	b.WriteString(`</svg>`)
	return chart{Title: title, SVG: template.HTML(b.String())}
}

// barChart draws one bar per value from a zero baseline.
func barChart(title string, dates []time.Time, values []float64, color string) chart {
	var b strings.Builder
	svgOpen(&b, title)

	if len(values) > 0 {
		hi := 0.0
		for _, v := range values {
			hi = math.Max(hi, v)
		}
		if hi == 0 {
			hi = 1
		}
		p := plotArea{n: len(values), lo: 0, hi: hi}
		svgAxes(&b, p, dates)

		step := float64(chartWidth-2*chartPadding) / float64(len(values))
		width := math.Max(step*0.8, 1)
		for i, v := range values {
			y := p.y(v)
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.6"/>`,
				chartPadding+float64(i)*step, y, width, float64(chartHeight-chartPadding)-y, color)
		}
	}

	b.WriteString(`</svg>`)
	return chart{Title: title, SVG: template.HTML(b.String())}
}
