package chart

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/covid-dashboard/internal/covid"
)

// ErrNotEnoughData is returned when a chart would have nothing meaningful to draw.
var ErrNotEnoughData = errors.New("not enough data to draw a chart")

// Options controls the rendered image size in pixels.
type Options struct {
	Width  int
	Height int
}

var (
	colorCases     = drawing.ColorFromHex("4572A7")
	colorDeaths    = drawing.ColorFromHex("AA4643")
	colorRecovered = drawing.ColorFromHex("89A54E")
)

// RenderTimeline draws the aligned Cases/Dead/Recovered series of a country as a PNG.
func RenderTimeline(w io.Writer, view covid.CountryView, opts Options) error {
	if len(view.Cases) < 2 {
		return ErrNotEnoughData
	}

	var (
		series []gochart.Series
		peak   int64
	)
	add := func(name string, points []covid.TimelinePoint, col drawing.Color) {
		if len(points) == 0 {
			return
		}
		xs := make([]time.Time, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p.Day
			ys[i] = float64(p.Value)
			if p.Value > peak {
				peak = p.Value
			}
		}
		series = append(series, gochart.TimeSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
			},
		})
	}
	add("Cases", view.Cases, colorCases)
	add("Dead", view.Deaths, colorDeaths)
	add("Recovered", view.Recovered, colorRecovered)

	ch := gochart.Chart{
		Title:      fmt.Sprintf("2020 Corona pandemic in %s", view.Country),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 02"),
		},
		YAxis: gochart.YAxis{
			Name:           "Amount of people",
			Range:          &gochart.ContinuousRange{Min: 0, Max: axisMax(peak)},
			ValueFormatter: countFormatter,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render timeline chart: %w", err)
	}
	return nil
}

// RenderComparison draws the case count of every country in the set as a bar chart PNG.
// Bars are ordered by country name.
func RenderComparison(w io.Writer, set covid.ComparisonSet, opts Options) error {
	if len(set) == 0 {
		return ErrNotEnoughData
	}

	names := set.Names()
	sort.Strings(names)

	var peak int64
	bars := make([]gochart.Value, 0, len(names))
	for _, name := range names {
		cases := set[name].Cases
		if cases > peak {
			peak = cases
		}
		bars = append(bars, gochart.Value{
			Label: name,
			Value: float64(cases),
			Style: gochart.Style{FillColor: colorCases, StrokeColor: colorCases},
		})
	}

	bc := gochart.BarChart{
		Title:      "Cases by country",
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth(opts.Width, len(bars)),
		Background: gochart.Style{Padding: gochart.Box{Top: 50}},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: axisMax(peak)},
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render comparison chart: %w", err)
	}
	return nil
}

// axisMax leaves a little headroom above the peak and never returns a zero range.
func axisMax(peak int64) float64 {
	if peak <= 0 {
		return 1
	}
	return float64(peak) * 1.05
}

func barWidth(width, n int) int {
	if n == 0 || width <= 0 {
		return 40
	}
	bw := width / (n * 4)
	if bw > 60 {
		bw = 60
	}
	if bw < 10 {
		bw = 10
	}
	return bw
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
