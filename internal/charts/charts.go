// Package charts renders the dashboard graphics as PNGs: a line chart of
// income and expense totals per month and a donut of expense totals per tag.
package charts

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/work4inventions/financeInsight/internal/core"
)

// ErrNoData means there is nothing to plot. Callers show an empty state
// instead of an image.
var ErrNoData = errors.New("charts: no data to plot")

const (
	chartWidth  = 760
	chartHeight = 320
	donutSize   = 360
)

var (
	incomeColor  = drawing.Color{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	expenseColor = drawing.Color{R: 0xc6, G: 0x28, B: 0x28, A: 0xff}
)

// RenderMonthly draws income and expense totals per calendar month on a
// shared chronological axis.
func RenderMonthly(w io.Writer, income, expenses []core.MonthBucket) error {
	months := monthAxis(income, expenses)
	if len(months) == 0 {
		return ErrNoData
	}

	ticks := make([]chart.Tick, len(months))
	for i, m := range months {
		ticks[i] = chart.Tick{Value: float64(i), Label: m.label}
	}

	// A line needs two points. A single month gets a flat segment.
	pad := len(months) == 1
	if pad {
		ticks = append(ticks, chart.Tick{Value: 1, Label: months[0].label})
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if vf, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", vf)
				}
				return ""
			},
		},
		Series: []chart.Series{
			monthSeries("Income", months, income, incomeColor, pad),
			monthSeries("Expenses", months, expenses, expenseColor, pad),
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render monthly chart: %w", err)
	}
	return nil
}

// RenderTags draws the per-tag expense donut.
func RenderTags(w io.Writer, buckets []core.TagBucket) error {
	if len(buckets) == 0 {
		return ErrNoData
	}

	values := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		if b.Total.Cents <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: b.Tag,
			Value: float64(b.Total.Cents) / 100,
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	donut := chart.DonutChart{
		Width:  donutSize,
		Height: donutSize,
		Values: values,
	}

	if err := donut.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render tag chart: %w", err)
	}
	return nil
}

type month struct {
	year, num int
	label     string
}

// monthAxis merges both bucket sets into one chronological axis.
func monthAxis(series ...[]core.MonthBucket) []month {
	seen := make(map[month]bool)
	var out []month
	for _, buckets := range series {
		for _, b := range buckets {
			m := month{year: b.Year, num: b.Month, label: b.Label}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].year != out[j].year {
			return out[i].year < out[j].year
		}
		return out[i].num < out[j].num
	})
	return out
}

func monthSeries(name string, months []month, buckets []core.MonthBucket, color drawing.Color, pad bool) chart.Series {
	totals := make(map[month]int64, len(buckets))
	for _, b := range buckets {
		totals[month{year: b.Year, num: b.Month, label: b.Label}] = b.Total.Cents
	}

	xs := make([]float64, len(months))
	ys := make([]float64, len(months))
	for i, m := range months {
		xs[i] = float64(i)
		ys[i] = float64(totals[m]) / 100
	}
	if pad {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
	}

	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: color},
	}
}
