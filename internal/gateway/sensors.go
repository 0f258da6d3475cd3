package gateway

import (
	"context"
	"net/http"

	"airsense_console/internal/models"
)

const sensorAvgPath = "/api/v1/sensors/avg"

// SensorAverages fetches hourly averages of one metric across the user's
// devices. Only Hour and the requested metric are populated.
func (g *Gateway) SensorAverages(ctx context.Context, metric models.Metric) ([]models.Reading, error) {
	const op = "sensor_averages"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return nil, err
	}
	resp, err := g.send(op, http.MethodGet, sensorAvgPath, req.SetQueryParam("filter", string(metric)))
	if err != nil {
		return nil, err
	}
	readings := make([]models.Reading, 0)
	if err := decode(op, resp, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}
