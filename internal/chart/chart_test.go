package chart

import (
	"encoding/json"
	"testing"

	"airsense_console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReadings() []models.Reading {
	return []models.Reading{
		{Hour: 0, Humidity: 40, Pressure: 1013, Temperature: 20.5, GasResistance: 120},
		{Hour: 1, Humidity: 41, Pressure: 1012, Temperature: 21, GasResistance: 119},
		{Hour: 2, Humidity: 43, Pressure: 1011, Temperature: 21.5, GasResistance: 117},
	}
}

func TestBuild_LabelsAreTheHourProjection(t *testing.T) {
	readings := sampleReadings()
	series := Build(readings)
	require.Len(t, series, 4)

	hours := []float64{0, 1, 2}
	for _, s := range series {
		assert.Equal(t, hours, s.Labels, s.Title)
		assert.Len(t, s.Values, len(readings), s.Title)
	}
	assert.Equal(t, []float64{40, 41, 43}, series[0].Values)
	assert.Equal(t, []float64{1013, 1012, 1011}, series[1].Values)
	assert.Equal(t, []float64{20.5, 21, 21.5}, series[2].Values)
	assert.Equal(t, []float64{120, 119, 117}, series[3].Values)
	assert.Equal(t, "Gas Resistance", series[3].Title)
}

func TestBuild_EmptyReadings(t *testing.T) {
	for _, s := range Build(nil) {
		assert.Empty(t, s.Labels)
		assert.NotNil(t, s.Labels)
		assert.Empty(t, s.Values)
	}
}

func TestBuild_SelectedMetricsKeepOrder(t *testing.T) {
	series := Build(sampleReadings(), models.MetricTemperature, models.MetricHumidity)
	require.Len(t, series, 2)
	assert.Equal(t, models.MetricTemperature, series[0].Metric)
	assert.Equal(t, models.MetricHumidity, series[1].Metric)
}

func TestRender_GuardsAbsentSurfaceAndData(t *testing.T) {
	r := Renderer{Style: DetailStyle}

	assert.NotPanics(t, func() {
		r.Render(nil, "Humidity", sampleReadings(), models.MetricHumidity.Value)
	})

	var nilBoard *Board
	assert.NotPanics(t, func() {
		r.Render(nilBoard, "Humidity", sampleReadings(), models.MetricHumidity.Value)
	})

	b := &Board{}
	r.Render(b, "Humidity", nil, models.MetricHumidity.Value)
	assert.Empty(t, b.Charts)

	r.Render(b, "Humidity", []models.Reading{}, models.MetricHumidity.Value)
	assert.Len(t, b.Charts, 1, "an empty but present sequence still draws an empty chart")
}

func TestRender_DetailStyleHasZoom(t *testing.T) {
	b := &Board{}
	Renderer{Style: DetailStyle}.RenderMetrics(b, sampleReadings())
	require.Len(t, b.Charts, 4)

	cfg := b.Charts[0]
	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, "Humidity", cfg.Data.Datasets[0].Label)
	assert.Equal(t, "#B39DDB", cfg.Data.Datasets[0].BorderColor)
	assert.Equal(t, []float64{0, 1, 2}, cfg.Data.Labels)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"zoom"`)
	assert.Contains(t, string(raw), `"modifierKey":"ctrl"`)
}

func TestRender_OverviewStyleSuffixesTitles(t *testing.T) {
	b := &Board{}
	Renderer{Style: OverviewStyle}.RenderMetrics(b, sampleReadings())
	require.Len(t, b.Charts, 4)

	titles := make([]string, 0, 4)
	for _, c := range b.Charts {
		titles = append(titles, c.Data.Datasets[0].Label)
		plugins := c.Options["plugins"].(map[string]any)
		assert.NotContains(t, plugins, "zoom")
	}
	assert.Equal(t, []string{"Humidity (Avg)", "Pressure (Avg)", "Temperature (Avg)", "Gas Resistance (Avg)"}, titles)
}
