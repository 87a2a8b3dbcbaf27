package handlers

import (
	"context"
	"net/http"
	"sync"

	"sensor_simulator/internal/models"
	"sensor_simulator/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	enabled   bool
	subject   string
	parseErr  error
	lastToken string
}

func (m *mockAuth) Enabled() bool { return m.enabled }

func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastToken = token
	return m.subject, m.parseErr
}

// mockMonitoring serves a fixed latest snapshot and lets tests push to subscribers.
type mockMonitoring struct {
	mu     sync.Mutex
	latest *models.Snapshot
	subs   []chan models.Snapshot
	subbed chan struct{}
}

func (m *mockMonitoring) Latest() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return models.Snapshot{}, false
	}
	return *m.latest, true
}

func (m *mockMonitoring) Subscribe(buffer int) (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 8)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	if m.subbed != nil {
		m.subbed <- struct{}{}
	}
	return ch, func() {}
}

func (m *mockMonitoring) Publish(snap models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &snap
	for _, ch := range m.subs {
		ch <- snap
	}
}

type mockHistory struct {
	readings   []models.Reading
	deliveries []models.Delivery
	err        error

	lastReadings   models.ReadingFilter
	lastDeliveries models.DeliveryFilter
}

func (m *mockHistory) Readings(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error) {
	m.lastReadings = f
	return m.readings, m.err
}

func (m *mockHistory) Deliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	m.lastDeliveries = f
	return m.deliveries, m.err
}

type mockBatch struct {
	series    service.Series
	err       error
	lastTicks int
	lastSeed  uint64
}

func (m *mockBatch) Simulate(ticks int, seed uint64) (service.Series, error) {
	m.lastTicks = ticks
	m.lastSeed = seed
	if m.err != nil {
		return service.Series{}, m.err
	}
	s := m.series
	s.Ticks, s.Seed = ticks, seed
	return s, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withHeader(req *http.Request, hdr http.Header) *http.Request {
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
