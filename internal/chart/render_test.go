package chart

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/covid-dashboard/internal/covid"
)

func series(start time.Time, values ...int64) []covid.TimelinePoint {
	out := make([]covid.TimelinePoint, len(values))
	for i, v := range values {
		out[i] = covid.TimelinePoint{Day: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func TestRenderTimeline(t *testing.T) {
	start := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	view := covid.CountryView{
		Country:   "Norway",
		Cases:     series(start, 1, 6, 15, 40),
		Deaths:    series(start, 0, 0, 1, 1),
		Recovered: series(start, 0, 1, 2, 4),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTimeline(&buf, view, Options{Width: 640, Height: 320}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestRenderTimelineWithEmptyLaggingSeries(t *testing.T) {
	start := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	view := covid.CountryView{
		Country: "Norway",
		Cases:   series(start, 0, 0),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTimeline(&buf, view, Options{Width: 320, Height: 200}))
	assert.NotZero(t, buf.Len())
}

func TestRenderTimelineNeedsTwoPoints(t *testing.T) {
	view := covid.CountryView{
		Country: "Norway",
		Cases:   series(time.Now(), 3),
	}

	var buf bytes.Buffer
	assert.ErrorIs(t, RenderTimeline(&buf, view, Options{}), ErrNotEnoughData)
	assert.Zero(t, buf.Len())
}

func TestRenderComparison(t *testing.T) {
	set := covid.ComparisonSet{
		"Sweden":  {Country: "Sweden", Cases: 200},
		"Norway":  {Country: "Norway", Cases: 100},
		"Denmark": {Country: "Denmark", Cases: 150},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderComparison(&buf, set, Options{Width: 640, Height: 320}))

	_, err := png.Decode(&buf)
	require.NoError(t, err)
}

func TestRenderComparisonEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderComparison(&buf, covid.ComparisonSet{}, Options{}), ErrNotEnoughData)
}

func TestAxisMax(t *testing.T) {
	assert.Equal(t, 1.0, axisMax(0))
	assert.Equal(t, 1.0, axisMax(-5))
	assert.InDelta(t, 105.0, axisMax(100), 1e-9)
}
