// Package chart maps device readings onto line-chart datasets.
package chart

import "airsense_console/internal/models"

// Accessor picks one value out of a reading.
type Accessor func(models.Reading) float64

// Series is one metric projected over the hour axis.
type Series struct {
	Metric models.Metric `json:"metric"`
	Title  string        `json:"title"`
	Labels []float64     `json:"labels"`
	Values []float64     `json:"values"`
}

// Project splits readings into the shared hour labels and the values picked
// by value. Both slices have len(readings) entries.
func Project(readings []models.Reading, value Accessor) (labels, values []float64) {
	labels = make([]float64, len(readings))
	values = make([]float64, len(readings))
	for i, r := range readings {
		labels[i] = r.Hour
		values[i] = value(r)
	}
	return labels, values
}

// Build returns one series per metric, in the order given. With no metrics
// it uses models.Metrics.
func Build(readings []models.Reading, metrics ...models.Metric) []Series {
	if len(metrics) == 0 {
		metrics = models.Metrics
	}
	out := make([]Series, 0, len(metrics))
	for _, m := range metrics {
		labels, values := Project(readings, m.Value)
		out = append(out, Series{
			Metric: m,
			Title:  m.Title(),
			Labels: labels,
			Values: values,
		})
	}
	return out
}
