package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airsense_console/internal/logger"
	"airsense_console/internal/models"
	"airsense_console/internal/session"
)

var ErrEmptyDeviceName = errors.New("device name is required")

type DeviceService struct {
	backend  Connector
	activity Recorder
	window   time.Duration
	windows  WindowPolicy
	log      *logger.Logger
}

func NewDeviceService(backend Connector, activity Recorder, window time.Duration, log *logger.Logger) *DeviceService {
	if log == nil {
		log = logger.Nop()
	}
	return &DeviceService{backend: backend, activity: activity, window: window, log: log}
}

func (s *DeviceService) ListDevices(ctx context.Context, sess *session.Accessor) ([]models.DeviceInfo, error) {
	return s.backend.Connect(sess).ListDevices(ctx)
}

// CreateDevice registers a device under the trimmed name.
func (s *DeviceService) CreateDevice(ctx context.Context, sess *session.Accessor, name string) (models.DeviceInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.DeviceInfo{}, ErrEmptyDeviceName
	}
	d, err := s.backend.Connect(sess).CreateDevice(ctx, name)
	if err != nil {
		return models.DeviceInfo{}, err
	}
	if s.activity != nil {
		s.activity.Record(context.WithoutCancel(ctx), models.ActivityEvent{
			SessionID:   sess.ID(),
			Type:        models.ActivityDeviceCreated,
			Description: fmt.Sprintf("device %q created", name),
			Metadata:    map[string]any{"device_id": d.ID},
		})
	}
	return d, nil
}

// DeviceView builds the detail view of device id for one request or socket.
func (s *DeviceService) DeviceView(sess *session.Accessor, id string, opts ViewOptions) *DeviceView {
	v := newDeviceView(strings.TrimSpace(id), sess.ID(), s.backend.Connect(sess), s.activity, s.window, s.log, opts)
	v.windows = s.windows
	return v
}
