package gateway

import (
	"context"
	"net/http"
	"time"

	"airsense_console/internal/models"
)

const (
	devicesPath    = "/api/v1/devices"
	devicePath     = "/api/v1/devices/{id}"
	deviceDataPath = "/api/v1/devices/{id}/data"
	deviceCodePath = "/api/v1/devices/{id}/code"
)

// CreateDevice registers a new device under the session's user.
func (g *Gateway) CreateDevice(ctx context.Context, name string) (models.DeviceInfo, error) {
	const op = "create_device"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return models.DeviceInfo{}, err
	}
	resp, err := g.send(op, http.MethodPost, devicesPath, req.SetBody(map[string]string{"name": name}))
	if err != nil {
		return models.DeviceInfo{}, err
	}
	var d models.DeviceInfo
	if err := decode(op, resp, &d); err != nil {
		return models.DeviceInfo{}, err
	}
	return d, nil
}

// GetDevice fetches a single device.
func (g *Gateway) GetDevice(ctx context.Context, id string) (models.DeviceInfo, error) {
	const op = "get_device"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return models.DeviceInfo{}, err
	}
	resp, err := g.send(op, http.MethodGet, devicePath, req.SetPathParam("id", id))
	if err != nil {
		return models.DeviceInfo{}, err
	}
	var d models.DeviceInfo
	if err := decode(op, resp, &d); err != nil {
		return models.DeviceInfo{}, err
	}
	return d, nil
}

// ListDevices fetches every device of the session's user.
func (g *Gateway) ListDevices(ctx context.Context) ([]models.DeviceInfo, error) {
	const op = "list_devices"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return nil, err
	}
	resp, err := g.send(op, http.MethodGet, devicesPath, req)
	if err != nil {
		return nil, err
	}
	devices := make([]models.DeviceInfo, 0)
	if err := decode(op, resp, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// DeleteDevice destroys the device record.
func (g *Gateway) DeleteDevice(ctx context.Context, id string) error {
	const op = "delete_device"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return err
	}
	_, err = g.send(op, http.MethodDelete, devicePath, req.SetPathParam("id", id))
	return err
}

// GetDeviceData fetches the readings of a device. A nil since lets the
// backend pick the window.
func (g *Gateway) GetDeviceData(ctx context.Context, id string, since *time.Time) ([]models.Reading, error) {
	const op = "get_device_data"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return nil, err
	}
	req.SetPathParam("id", id)
	if since != nil {
		req.SetQueryParam("since", since.UTC().Format(time.RFC3339))
	}
	resp, err := g.send(op, http.MethodGet, deviceDataPath, req)
	if err != nil {
		return nil, err
	}
	readings := make([]models.Reading, 0)
	if err := decode(op, resp, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// CreateDeviceCode issues a fresh activation code for the device.
func (g *Gateway) CreateDeviceCode(ctx context.Context, id string) (models.DeviceCode, error) {
	const op = "create_device_code"
	req, err := g.authorized(ctx, op)
	if err != nil {
		return models.DeviceCode{}, err
	}
	resp, err := g.send(op, http.MethodPost, deviceCodePath, req.SetPathParam("id", id))
	if err != nil {
		return models.DeviceCode{}, err
	}
	var code models.DeviceCode
	if err := decode(op, resp, &code); err != nil {
		return models.DeviceCode{}, err
	}
	return code, nil
}
