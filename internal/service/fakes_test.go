package service

import (
	"context"
	"sync"
	"time"

	"airsense_console/internal/gateway"
	"airsense_console/internal/models"
	"airsense_console/internal/session"
)

// fakeBackend records every call in order. Per-call hooks let a test block,
// fail or inspect a call.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	device   models.DeviceInfo
	readings []models.Reading
	averages map[models.Metric][]models.Reading
	code     models.DeviceCode

	errs map[string]error

	onGetDevice func(ctx context.Context) error
	lastSince   *time.Time
	lastTrigger []any
	loginToken  string
	session     gateway.SessionAccessor
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		device: models.DeviceInfo{ID: "d1", UserID: "u1", Name: "Kitchen"},
		readings: []models.Reading{
			{Hour: 0, Humidity: 40, Pressure: 1013, Temperature: 21, GasResistance: 120},
			{Hour: 1, Humidity: 41, Pressure: 1012, Temperature: 22, GasResistance: 119},
		},
		code: models.DeviceCode{Code: "ABC123"},
		errs: map[string]error{},
	}
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.errs[call]
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.callLog() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) CreateDevice(_ context.Context, name string) (models.DeviceInfo, error) {
	if err := f.record("CreateDevice"); err != nil {
		return models.DeviceInfo{}, err
	}
	return models.DeviceInfo{ID: "new-" + name, Name: name}, nil
}

func (f *fakeBackend) GetDevice(ctx context.Context, _ string) (models.DeviceInfo, error) {
	if f.onGetDevice != nil {
		if err := f.onGetDevice(ctx); err != nil {
			f.record("GetDevice")
			return models.DeviceInfo{}, err
		}
	}
	if err := f.record("GetDevice"); err != nil {
		return models.DeviceInfo{}, err
	}
	return f.device, nil
}

func (f *fakeBackend) ListDevices(context.Context) ([]models.DeviceInfo, error) {
	if err := f.record("ListDevices"); err != nil {
		return nil, err
	}
	return []models.DeviceInfo{f.device}, nil
}

func (f *fakeBackend) DeleteDevice(context.Context, string) error {
	return f.record("DeleteDevice")
}

func (f *fakeBackend) GetDeviceData(_ context.Context, _ string, since *time.Time) ([]models.Reading, error) {
	f.mu.Lock()
	f.lastSince = since
	f.mu.Unlock()
	if err := f.record("GetDeviceData"); err != nil {
		return nil, err
	}
	return f.readings, nil
}

func (f *fakeBackend) CreateDeviceCode(context.Context, string) (models.DeviceCode, error) {
	if err := f.record("CreateDeviceCode"); err != nil {
		return models.DeviceCode{}, err
	}
	return f.code, nil
}

func (f *fakeBackend) CreateTrigger(_ context.Context, deviceID, name, postURL string, threshold float64, parameter models.Metric, operator models.Operator) (models.Trigger, error) {
	f.mu.Lock()
	f.lastTrigger = []any{deviceID, name, postURL, threshold, parameter, operator}
	f.mu.Unlock()
	if err := f.record("CreateTrigger"); err != nil {
		return models.Trigger{}, err
	}
	return models.Trigger{ID: "t1", DeviceID: deviceID, Name: name, PostURL: postURL, Threshold: threshold, Parameter: parameter, Operator: operator}, nil
}

func (f *fakeBackend) Login(ctx context.Context, _, _ string) error {
	if err := f.record("Login"); err != nil {
		return err
	}
	return f.session.SetToken(ctx, f.loginToken)
}

func (f *fakeBackend) SensorAverages(_ context.Context, m models.Metric) ([]models.Reading, error) {
	if err := f.record("SensorAverages:" + string(m)); err != nil {
		return nil, err
	}
	return f.averages[m], nil
}

func (f *fakeBackend) OpenWindow(context.Context, string) error {
	return f.record("OpenWindow")
}

// fakeConnector hands out the same backend for every session.
type fakeConnector struct {
	backend *fakeBackend
}

func (c fakeConnector) Connect(s gateway.SessionAccessor) Backend {
	c.backend.mu.Lock()
	c.backend.session = s
	c.backend.mu.Unlock()
	return c.backend
}

// fakeUI captures navigation, notifications and dialogs.
type fakeUI struct {
	mu            sync.Mutex
	navigations   []string
	notifications []models.Notification
	authCodes     []models.DeviceCode
	deleteAsks    []models.DeviceInfo
}

func (u *fakeUI) Navigate(path string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.navigations = append(u.navigations, path)
}

func (u *fakeUI) Notify(n models.Notification) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notifications = append(u.notifications, n)
}

func (u *fakeUI) OpenAuthorization(code models.DeviceCode) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.authCodes = append(u.authCodes, code)
}

func (u *fakeUI) OpenDeleteConfirmation(d models.DeviceInfo) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleteAsks = append(u.deleteAsks, d)
}

func (u *fakeUI) options() ViewOptions {
	return ViewOptions{Navigator: u, Notifier: u, Dialogs: u}
}

// memStore is an in-memory repository.SessionStore.
type memStore struct {
	mu     sync.Mutex
	data   map[string]map[string]string
	purged int
}

func newMemStore() *memStore { return &memStore{data: map[string]map[string]string{}} }

func (m *memStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[sid][key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, sid, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[sid] == nil {
		m.data[sid] = map[string]string{}
	}
	m.data[sid][key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[sid], key)
	return nil
}

func (m *memStore) Destroy(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sid)
	return nil
}

func (m *memStore) Purge(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged++
	return 1, nil
}

func (m *memStore) purgeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purged
}

func newTestSession(id string) *session.Accessor {
	return session.New(newMemStore(), id, time.Hour)
}
