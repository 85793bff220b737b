package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupchat-service/internal/mocks"
)

type fixedStats struct{ connections, rooms int }

func (s fixedStats) Stats() (int, int) { return s.connections, s.rooms }

func setupDebugRouter(audit Auditor, enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterDebugRoutes(r, audit, fixedStats{connections: 3, rooms: 2}, enabled)
	return r
}

func TestDebugRoutesDisabled(t *testing.T) {
	r := setupDebugRouter(new(mocks.AuditorMock), false)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/debug/audit-test", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/debug/ws", "").Code)
}

func TestDebugAuditTestUsesRequestID(t *testing.T) {
	audit := new(mocks.AuditorMock)
	audit.On("Emit", mock.Anything, "WARN", "audit test", "req-1", (*int64)(nil), 0).Once()
	r := setupDebugRouter(audit, true)

	req := httptest.NewRequest(http.MethodPost, "/debug/audit-test", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"requestId":"req-1"}`, rec.Body.String())
	audit.AssertExpectations(t)
}

func TestDebugAuditWithoutEmitter(t *testing.T) {
	r := setupDebugRouter(nil, true)

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodPost, "/debug/audit-test", "").Code)
}

func TestDebugRealtimeStats(t *testing.T) {
	r := setupDebugRouter(nil, true)

	rec := serve(r, http.MethodGet, "/debug/ws", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connections":3,"rooms":2}`, rec.Body.String())
}
