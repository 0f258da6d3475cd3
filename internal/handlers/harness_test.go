package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"airsense_console/internal/gateway"
	"airsense_console/internal/models"
	"airsense_console/internal/repository"
	"airsense_console/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const (
	testEmail    = "a@b.c"
	testPassword = "secret"
	testToken    = "tok-1"
)

// restBackend is an in-memory stand-in for the AirSense REST API.
type restBackend struct {
	mu       sync.Mutex
	token    string
	devices  map[string]models.DeviceInfo
	order    []string
	readings []models.Reading
	fail     map[string]int // "METHOD /pattern" -> status
	triggers []map[string]any
	deleted  []string
	windows  int
}

func newRestBackend() (*restBackend, *httptest.Server) {
	b := &restBackend{
		token:   testToken,
		devices: map[string]models.DeviceInfo{"d1": {ID: "d1", UserID: "u1", Name: "Kitchen"}},
		order:   []string{"d1"},
		readings: []models.Reading{
			{Hour: 0, Humidity: 40, Pressure: 1013, Temperature: 21, GasResistance: 120},
			{Hour: 1, Humidity: 42, Pressure: 1012, Temperature: 22, GasResistance: 118},
		},
		fail: map[string]int{},
	}

	mux := http.NewServeMux()
	b.handle(mux, "POST /api/v1/auth/login", false, b.login)
	b.handle(mux, "GET /api/v1/devices", true, b.listDevices)
	b.handle(mux, "POST /api/v1/devices", true, b.createDevice)
	b.handle(mux, "GET /api/v1/devices/{id}", true, b.getDevice)
	b.handle(mux, "DELETE /api/v1/devices/{id}", true, b.deleteDevice)
	b.handle(mux, "GET /api/v1/devices/{id}/data", true, b.deviceData)
	b.handle(mux, "POST /api/v1/devices/{id}/code", true, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, models.DeviceCode{Code: "ABC123"})
	})
	b.handle(mux, "POST /api/v1/triggers", true, b.createTrigger)
	b.handle(mux, "GET /api/v1/sensors/avg", true, b.sensorAverages)
	b.handle(mux, "POST /window", false, func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		b.windows++
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return b, httptest.NewServer(mux)
}

func (b *restBackend) handle(mux *http.ServeMux, pattern string, auth bool, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status, token := b.fail[pattern], b.token
		b.mu.Unlock()
		if status != 0 {
			http.Error(w, "injected failure", status)
			return
		}
		if auth && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fn(w, r)
	})
}

func (b *restBackend) failWith(pattern string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[pattern] = status
}

func (b *restBackend) revokeToken() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = "rotated"
}

func (b *restBackend) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Email != testEmail || in.Password != testPassword {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (b *restBackend) listDevices(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.DeviceInfo, 0, len(b.order))
	for _, id := range b.order {
		if d, ok := b.devices[id]; ok {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *restBackend) createDevice(w http.ResponseWriter, r *http.Request) {
	var in struct{ Name string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	id := fmt.Sprintf("dev-%d", len(b.order)+1)
	d := models.DeviceInfo{ID: id, UserID: "u1", Name: in.Name}
	b.devices[id] = d
	b.order = append(b.order, id)
	writeJSON(w, http.StatusCreated, d)
}

func (b *restBackend) getDevice(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	d, ok := b.devices[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (b *restBackend) deleteDevice(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	delete(b.devices, id)
	b.deleted = append(b.deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *restBackend) deviceData(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.readings)
}

func (b *restBackend) createTrigger(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	b.triggers = append(b.triggers, in)
	b.mu.Unlock()
	in["_id"] = "t1"
	writeJSON(w, http.StatusCreated, in)
}

func (b *restBackend) sensorAverages(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.readings)
}

func (b *restBackend) snapshot() (triggers []map[string]any, deleted []string, windows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.triggers...), append([]string(nil), b.deleted...), b.windows
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// memStore is an in-memory repository.SessionStore.
type memStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
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

func (m *memStore) Purge(context.Context) (int64, error) { return 0, nil }

// memActivity is an in-memory repository.ActivityRepo.
type memActivity struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (m *memActivity) Append(_ context.Context, e models.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.EventID = fmt.Sprintf("e%d", len(m.events)+1)
	e.OccurredAt = time.Now().UTC()
	m.events = append(m.events, e)
	return nil
}

func (m *memActivity) List(_ context.Context, f repository.ActivityFilter) ([]models.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ActivityEvent{}
	for _, e := range m.events {
		if f.SessionID != "" && e.SessionID != f.SessionID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// testEnv runs the console against restBackend over real HTTP. The client
// keeps cookies and does not follow redirects.
type testEnv struct {
	t        *testing.T
	backend  *restBackend
	backURL  string
	activity *memActivity
	srv      *httptest.Server
	client   *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend, backSrv := newRestBackend()
	t.Cleanup(backSrv.Close)

	reg := prometheus.NewRegistry()
	client := gateway.NewClient(gateway.Options{
		BaseURL: backSrv.URL,
		Timeout: 5 * time.Second,
		Metrics: gateway.NewMetrics(reg),
	})
	activity := &memActivity{}
	repos := &repository.Repository{Sessions: newMemStore(), Activity: activity}
	services := service.NewService(repos, service.NewGatewayConnector(client), service.Config{
		SigningKey:  "handler-test-key",
		SessionTTL:  time.Hour,
		WindowHosts: []string{"127.0.0.1"},
	}, nil)

	srv := httptest.NewServer(NewHandler(services, nil, reg).InitRoutes())
	t.Cleanup(srv.Close)

	return &testEnv{
		t:        t,
		backend:  backend,
		backURL:  backSrv.URL,
		activity: activity,
		srv:      srv,
		client:   newClient(t),
	}
}

// newClient returns a browser-like client with its own cookie jar.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type result struct {
	status   int
	location string
	body     string
}

func (e *testEnv) do(req *http.Request) result {
	e.t.Helper()
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return result{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (e *testEnv) get(path string) result {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	return e.do(req)
}

func (e *testEnv) post(path string, form url.Values) result {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) login() {
	e.t.Helper()
	res := e.post("/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	if res.status != http.StatusSeeOther || res.location != "/devices" {
		e.t.Fatalf("login: status=%d location=%q body=%s", res.status, res.location, res.body)
	}
}

func (e *testEnv) activityTypes() []string {
	e.activity.mu.Lock()
	defer e.activity.mu.Unlock()
	out := make([]string, 0, len(e.activity.events))
	for _, ev := range e.activity.events {
		out = append(out, ev.Type)
	}
	return out
}

// sessionCookieValue is the session cookie the client would send next.
func (e *testEnv) sessionCookieValue() string {
	e.t.Helper()
	u, err := url.Parse(e.srv.URL)
	if err != nil {
		e.t.Fatalf("parse server url: %v", err)
	}
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	return ""
}
