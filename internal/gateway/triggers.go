package gateway

import (
	"context"
	"net/http"

	"airsense_console/internal/models"
)

const triggersPath = "/api/v1/triggers"

type createTriggerRequest struct {
	DeviceID  string          `json:"deviceId"`
	Name      string          `json:"name"`
	PostURL   string          `json:"postUrl"`
	Threshold float64         `json:"threshold"`
	Parameter models.Metric   `json:"parameter"`
	Operator  models.Operator `json:"operator"`
}

// CreateTrigger submits an alert rule for a device in one request.
func (g *Gateway) CreateTrigger(
	ctx context.Context,
	deviceID, name, postURL string,
	threshold float64,
	parameter models.Metric,
	operator models.Operator,
) (models.Trigger, error) {
	const op = "create_trigger"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return models.Trigger{}, err
	}
	body := createTriggerRequest{
		DeviceID:  deviceID,
		Name:      name,
		PostURL:   postURL,
		Threshold: threshold,
		Parameter: parameter,
		Operator:  operator,
	}
	resp, err := g.send(op, http.MethodPost, triggersPath, req.SetBody(body))
	if err != nil {
		return models.Trigger{}, err
	}
	var t models.Trigger
	if err := decode(op, resp, &t); err != nil {
		return models.Trigger{}, err
	}
	return t, nil
}
