package service

import (
	"context"
	"strings"
	"time"

	"airsense_console/internal/gateway"
	"airsense_console/internal/logger"
	"airsense_console/internal/models"
	"airsense_console/internal/repository"
	"airsense_console/internal/session"
)

// Backend is the set of backend calls the views make on behalf of one
// session. *gateway.Gateway implements it.
type Backend interface {
	CreateDevice(ctx context.Context, name string) (models.DeviceInfo, error)
	GetDevice(ctx context.Context, id string) (models.DeviceInfo, error)
	ListDevices(ctx context.Context) ([]models.DeviceInfo, error)
	DeleteDevice(ctx context.Context, id string) error
	GetDeviceData(ctx context.Context, id string, since *time.Time) ([]models.Reading, error)
	CreateDeviceCode(ctx context.Context, id string) (models.DeviceCode, error)
	CreateTrigger(ctx context.Context, deviceID, name, postURL string, threshold float64, parameter models.Metric, operator models.Operator) (models.Trigger, error)
	Login(ctx context.Context, email, password string) error
	SensorAverages(ctx context.Context, metric models.Metric) ([]models.Reading, error)
	OpenWindow(ctx context.Context, url string) error
}

// Connector hands out a Backend bound to one session's token.
type Connector interface {
	Connect(s gateway.SessionAccessor) Backend
}

type gatewayConnector struct {
	client *gateway.Client
}

// NewGatewayConnector adapts a shared gateway client to Connector.
func NewGatewayConnector(c *gateway.Client) Connector {
	return gatewayConnector{client: c}
}

func (g gatewayConnector) Connect(s gateway.SessionAccessor) Backend {
	return g.client.For(s)
}

// Auth manages console sessions and the backend login.
type Auth interface {
	IssueSession() (sessionID, cookie string, err error)
	ParseSession(cookie string) (string, error)
	Login(ctx context.Context, sess *session.Accessor, email, password string) error
	Logout(ctx context.Context, sess *session.Accessor) error
}

// Sessions opens accessors over the session store.
type Sessions interface {
	Session(id string) *session.Accessor
}

// Devices lists and registers devices and builds per-request detail views.
type Devices interface {
	ListDevices(ctx context.Context, sess *session.Accessor) ([]models.DeviceInfo, error)
	CreateDevice(ctx context.Context, sess *session.Accessor, name string) (models.DeviceInfo, error)
	DeviceView(sess *session.Accessor, id string, opts ViewOptions) *DeviceView
}

// Overview loads the aggregate charts.
type Overview interface {
	LoadOverview(ctx context.Context, sess *session.Accessor) (*OverviewData, error)
}

// ActivityLog exposes the console audit trail.
type ActivityLog interface {
	Recorder
	ListActivity(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error)
}

// Recorder appends audit events. Failures are logged, never returned.
type Recorder interface {
	Record(ctx context.Context, e models.ActivityEvent)
}

// Janitor purges expired session values until ctx is canceled.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Config carries the tunables of the service layer.
type Config struct {
	SigningKey string
	SessionTTL time.Duration
	DataWindow time.Duration
	// WindowHosts restricts OpenWindow to these hosts; see WindowPolicy.
	WindowHosts []string
}

// Validate rejects configurations the console cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return ErrNoSigningKey
	}
	return nil
}

type Service struct {
	Auth
	Sessions
	Devices
	Overview
	ActivityLog
	Janitor
}

// NewService wires the repositories and the backend connector into the services.
func NewService(repos *repository.Repository, backend Connector, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	activity := NewActivityLogService(repos.Activity, log)
	devices := NewDeviceService(backend, activity, cfg.DataWindow, log)
	devices.windows = WindowPolicy{AllowedHosts: cfg.WindowHosts}
	return &Service{
		Auth:        NewAuthService(backend, activity, cfg.SigningKey, cfg.SessionTTL),
		Sessions:    NewSessionService(repos.Sessions, cfg.SessionTTL),
		Devices:     devices,
		Overview:    NewOverviewService(backend, log),
		ActivityLog: activity,
		Janitor:     NewJanitorService(repos.Sessions, log),
	}
}
