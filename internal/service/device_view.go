package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"airsense_console/internal/chart"
	"airsense_console/internal/logger"
	"airsense_console/internal/models"
)

// DefaultDataWindow is how far back the detail view fetches readings.
const DefaultDataWindow = 21 * 24 * time.Hour

// DeviceListPath is where a successful delete navigates.
const DeviceListPath = "/devices"

const (
	msgWindowFailed  = "Window could not be opened!"
	msgTriggerFailed = "Trigger could not be created!"
	actionOk         = "Ok"
)

// ViewState is the lifecycle of a device detail view.
type ViewState int

const (
	StateIdle ViewState = iota
	StateLoadingInfo
	StateLoadingData
	StateReady
	StateError
)

func (s ViewState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoadingInfo:
		return "LoadingInfo"
	case StateLoadingData:
		return "LoadingData"
	case StateReady:
		return "Ready"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a transient notification.
type Notifier interface {
	Notify(n models.Notification)
}

// Dialogs opens the dialogs of the detail view.
type Dialogs interface {
	OpenAuthorization(code models.DeviceCode)
	OpenDeleteConfirmation(device models.DeviceInfo)
}

// ViewOptions plugs the presentation side into a DeviceView. Nil members
// disable the actions that need them.
type ViewOptions struct {
	Navigator Navigator
	Notifier  Notifier
	Dialogs   Dialogs
	// OnState observes every state transition.
	OnState func(ViewState)
}

// DeviceView drives the detail page of one device: it fetches the device,
// then its readings, and runs the page actions against the backend.
type DeviceView struct {
	id        string
	sessionID string
	backend   Backend
	activity  Recorder
	log       *logger.Logger
	opts      ViewOptions
	window    time.Duration
	windows   WindowPolicy
	now       func() time.Time

	mu       sync.Mutex
	state    ViewState
	device   *models.DeviceInfo
	readings []models.Reading
	err      error
	deleted  bool
}

func newDeviceView(id, sessionID string, backend Backend, activity Recorder, window time.Duration, log *logger.Logger, opts ViewOptions) *DeviceView {
	if window <= 0 {
		window = DefaultDataWindow
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DeviceView{
		id:        id,
		sessionID: sessionID,
		backend:   backend,
		activity:  activity,
		log:       log.With("device_id", id),
		opts:      opts,
		window:    window,
		now:       time.Now,
	}
}

func (v *DeviceView) ID() string { return v.id }

func (v *DeviceView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Device returns the last fetched device info, or nil.
func (v *DeviceView) Device() *models.DeviceInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.device == nil {
		return nil
	}
	d := *v.device
	return &d
}

// Readings returns the last fetched readings. Nil means never fetched.
func (v *DeviceView) Readings() []models.Reading {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readings
}

// Err is the failure of the last Load, nil after a clean one.
func (v *DeviceView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Deleted reports whether the device was deleted through this view.
func (v *DeviceView) Deleted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deleted
}

// Charts projects the current readings onto the four metric series.
func (v *DeviceView) Charts() []chart.Series {
	return chart.Build(v.Readings())
}

// Draw renders the current readings onto s in the detail style.
func (v *DeviceView) Draw(s chart.Surface) {
	chart.Renderer{Style: chart.DetailStyle}.RenderMetrics(s, v.Readings())
}

func (v *DeviceView) inert() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.id == "" || v.deleted
}

func (v *DeviceView) setState(s ViewState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
	if v.opts.OnState != nil {
		v.opts.OnState(s)
	}
}

// Load fetches the device info and then its readings. Data is requested only
// after the info call has returned, whatever its outcome. Failures are logged
// and leave the last good data in place; the first one is returned and kept
// in Err. A canceled ctx abandons the load without touching the view's data.
func (v *DeviceView) Load(ctx context.Context) error {
	if v.inert() {
		return nil
	}

	v.setState(StateLoadingInfo)
	var firstErr error
	info, err := v.backend.GetDevice(ctx, v.id)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v.log.Errorw("device_info_failed", "err", err)
		firstErr = err
	} else {
		v.mu.Lock()
		v.device = &info
		v.mu.Unlock()
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.setState(StateLoadingData)
	since := v.now().Add(-v.window)
	readings, err := v.backend.GetDeviceData(ctx, v.id, &since)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v.log.Errorw("device_data_failed", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		if readings == nil {
			readings = []models.Reading{}
		}
		v.mu.Lock()
		v.readings = readings
		v.mu.Unlock()
	}

	v.mu.Lock()
	v.err = firstErr
	v.mu.Unlock()
	if firstErr != nil {
		v.setState(StateError)
		return firstErr
	}
	v.setState(StateReady)
	return nil
}

// AuthorizeDevice requests an authorization code and opens the dialog that
// shows it. It does nothing without a device id or a dialog target.
func (v *DeviceView) AuthorizeDevice(ctx context.Context) error {
	if v.inert() || v.opts.Dialogs == nil {
		return nil
	}
	code, err := v.backend.CreateDeviceCode(ctx, v.id)
	if err != nil {
		v.log.Errorw("device_code_failed", "err", err)
		return err
	}
	v.record(ctx, models.ActivityCodeIssued, "authorization code issued")
	v.opts.Dialogs.OpenAuthorization(code)
	return nil
}

// AttemptDeleteDevice opens the delete confirmation dialog.
func (v *DeviceView) AttemptDeleteDevice() {
	if v.inert() || v.opts.Dialogs == nil {
		return
	}
	device := models.DeviceInfo{ID: v.id}
	if d := v.Device(); d != nil {
		device = *d
	}
	v.opts.Dialogs.OpenDeleteConfirmation(device)
}

// DeleteDevice deletes the device and navigates to the device list. After a
// successful delete the view issues no further calls for this device.
func (v *DeviceView) DeleteDevice(ctx context.Context) error {
	if v.inert() {
		return nil
	}
	if err := v.backend.DeleteDevice(ctx, v.id); err != nil {
		v.log.Errorw("device_delete_failed", "err", err)
		return err
	}
	v.mu.Lock()
	v.deleted = true
	v.mu.Unlock()
	v.record(ctx, models.ActivityDeviceDeleted, "device deleted")
	if v.opts.Navigator != nil {
		v.opts.Navigator.Navigate(DeviceListPath)
	}
	return nil
}

// OpenWindow posts to the window webhook at url. An empty url does nothing;
// a url the WindowPolicy refuses is never called and notifies like a failure.
func (v *DeviceView) OpenWindow(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	if err := v.windows.Check(url); err != nil {
		v.log.Warnw("window_url_rejected", "err", err, "url", url)
		v.notify(msgWindowFailed, actionOk)
		return err
	}
	if err := v.backend.OpenWindow(ctx, url); err != nil {
		v.log.Errorw("window_open_failed", "err", err, "url", url)
		v.notify(msgWindowFailed, actionOk)
		return err
	}
	v.record(ctx, models.ActivityWindowOpened, "window opened")
	return nil
}

// AttemptCreateTrigger validates form and submits it. An incomplete form is
// dropped without a backend call or notification; the *gateway.ValidationError
// is returned so the caller can show the form again.
func (v *DeviceView) AttemptCreateTrigger(ctx context.Context, form TriggerForm) (models.Trigger, error) {
	if err := form.Validate(); err != nil {
		return models.Trigger{}, err
	}
	return v.CreateTrigger(ctx, form.Name, form.PostURL, *form.Threshold, form.Parameter, form.Operator)
}

// CreateTrigger submits the trigger once and notifies the outcome.
func (v *DeviceView) CreateTrigger(ctx context.Context, name, postURL string, threshold float64, parameter models.Metric, operator models.Operator) (models.Trigger, error) {
	if v.inert() {
		return models.Trigger{}, nil
	}
	t, err := v.backend.CreateTrigger(ctx, v.id, name, postURL, threshold, parameter, operator)
	if err != nil {
		v.log.Errorw("trigger_create_failed", "err", err, "name", name)
		v.notify(msgTriggerFailed, actionOk)
		return models.Trigger{}, err
	}
	v.record(ctx, models.ActivityTriggerCreated, fmt.Sprintf("trigger %q created", name))
	v.notify(fmt.Sprintf("Trigger %q created", name), "")
	return t, nil
}

func (v *DeviceView) notify(message, action string) {
	if v.opts.Notifier == nil {
		return
	}
	v.opts.Notifier.Notify(models.Notification{
		Message:  message,
		Action:   action,
		Duration: models.NotificationDuration,
	})
}

func (v *DeviceView) record(ctx context.Context, typ, description string) {
	if v.activity == nil {
		return
	}
	v.activity.Record(context.WithoutCancel(ctx), models.ActivityEvent{
		SessionID:   v.sessionID,
		Type:        typ,
		Description: description,
		Metadata:    map[string]any{"device_id": v.id},
	})
}
