package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"solar_monitor/internal/logger"
	"solar_monitor/internal/models"
	"solar_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

type mockMonitoring struct {
	snap models.StatusSnapshot
}

func (m *mockMonitoring) GetStatus(_ context.Context) models.StatusSnapshot {
	return m.snap
}

type mockHistory struct {
	page service.HistoryPage
	err  error
}

func (m *mockHistory) GetHistory(_ context.Context) (service.HistoryPage, error) {
	return m.page, m.err
}

type mockAlertLog struct {
	events []models.AlertEvent
	err    error

	lastFilter service.LogFilter
	called     bool
}

func (m *mockAlertLog) List(_ context.Context, f service.LogFilter) ([]models.AlertEvent, error) {
	m.called = true
	m.lastFilter = f
	return m.events, m.err
}

type mockPoller struct{}

func (m *mockPoller) Start() {}
func (m *mockPoller) Stop()  {}

func newTestRouter(t *testing.T, svc *service.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if svc.Poller == nil {
		svc.Poller = &mockPoller{}
	}
	h := NewHandler(svc, logger.Get(logger.InfoLevel))
	return h.InitRoutes()
}

func doGet(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)
	return w
}
