package service

import (
	"context"
	"slices"
	"sort"

	"airsense_console/internal/chart"
	"airsense_console/internal/logger"
	"airsense_console/internal/models"
	"airsense_console/internal/session"
)

// OverviewData is the merged aggregate of all metrics, one reading per hour.
type OverviewData struct {
	Readings []models.Reading
	// Failed lists the metrics whose averages could not be fetched.
	Failed []models.Metric
}

// Charts projects the aggregate onto the series of the metrics that loaded.
func (o *OverviewData) Charts() []chart.Series {
	ok := o.Loaded()
	if len(ok) == 0 {
		return nil
	}
	return chart.Build(o.Readings, ok...)
}

// Draw renders the loaded metrics onto s in the overview style. Failed
// metrics get no chart rather than a flat line at zero.
func (o *OverviewData) Draw(s chart.Surface) {
	ok := o.Loaded()
	if len(ok) == 0 {
		return
	}
	chart.Renderer{Style: chart.OverviewStyle}.RenderMetrics(s, o.Readings, ok...)
}

// Loaded returns models.Metrics without the failed ones.
func (o *OverviewData) Loaded() []models.Metric {
	out := make([]models.Metric, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		if !slices.Contains(o.Failed, m) {
			out = append(out, m)
		}
	}
	return out
}

type OverviewService struct {
	backend Connector
	log     *logger.Logger
}

func NewOverviewService(backend Connector, log *logger.Logger) *OverviewService {
	if log == nil {
		log = logger.Nop()
	}
	return &OverviewService{backend: backend, log: log}
}

// LoadOverview fetches the average of each metric in turn and merges them
// by hour. A metric that fails is logged and listed in Failed; the call
// only fails when every metric fails.
func (s *OverviewService) LoadOverview(ctx context.Context, sess *session.Accessor) (*OverviewData, error) {
	b := s.backend.Connect(sess)
	byHour := make(map[float64]*models.Reading)
	out := &OverviewData{}
	var firstErr error

	for _, m := range models.Metrics {
		readings, err := b.SensorAverages(ctx, m)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Errorw("sensor_averages_failed", "err", err, "metric", m)
			out.Failed = append(out.Failed, m)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, r := range readings {
			merged, ok := byHour[r.Hour]
			if !ok {
				merged = &models.Reading{Hour: r.Hour}
				byHour[r.Hour] = merged
			}
			setMetric(merged, m, m.Value(r))
		}
	}
	if len(out.Failed) == len(models.Metrics) {
		return nil, firstErr
	}

	out.Readings = make([]models.Reading, 0, len(byHour))
	for _, r := range byHour {
		out.Readings = append(out.Readings, *r)
	}
	sort.Slice(out.Readings, func(i, j int) bool { return out.Readings[i].Hour < out.Readings[j].Hour })
	return out, nil
}

func setMetric(r *models.Reading, m models.Metric, v float64) {
	switch m {
	case models.MetricHumidity:
		r.Humidity = v
	case models.MetricPressure:
		r.Pressure = v
	case models.MetricTemperature:
		r.Temperature = v
	case models.MetricGasResistance:
		r.GasResistance = v
	}
}
