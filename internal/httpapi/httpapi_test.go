package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/llmshell/supervisor/internal/logstore"
	"github.com/llmshell/supervisor/internal/probe"
	"github.com/llmshell/supervisor/internal/supervisor"
)

type nopProbeSource struct{}

func (nopProbeSource) Probe(int) probe.Probe {
	return probe.Probe{CPUPercent: probe.UnavailableFloat, MemMB: probe.UnavailableFloat}
}

func newTestRouter(t *testing.T) (*gin.Engine, *logstore.Store) {
	t.Helper()
	store := logstore.NewStore(t.TempDir())
	sup := supervisor.New(zap.NewNop(), store, nopProbeSource{}, supervisor.Config{
		SettleDelay: 30 * time.Millisecond,
		KillTimeout: time.Second,
	})
	r := NewRouter(zap.NewNop(), sup, store, Options{})
	return r, store
}

func TestHealthReturnsFixedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestStartPlainTextBodyThenStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("true"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "status: exited\n")
	require.Contains(t, rec.Body.String(), "exit_code: 0\n")
}

func TestStartJSONBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader(`{"command":"true"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "status: exited")
}

func TestStartEmptyCommandIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("   "))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoubleStartConflicts(t *testing.T) {
	router, _ := newTestRouter(t)

	req1 := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("sleep 5"))
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	require.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("sleep 5"))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusConflict, rec2.Code)

	killReq := httptest.NewRequest(http.MethodPost, "/kill?type=SIGKILL", nil)
	killRec := httptest.NewRecorder()
	router.ServeHTTP(killRec, killReq)
	require.Equal(t, http.StatusOK, killRec.Code)
}

func TestStatusWithoutStartIsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/status?format=json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"no child has been started"}`, rec.Body.String())
}

func TestLogsExclusiveFilterIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/logs?lines=5&seconds=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogsReturnsChildOutput(t *testing.T) {
	router, _ := newTestRouter(t)

	startReq := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("echo hello"))
	startRec := httptest.NewRecorder()
	router.ServeHTTP(startRec, startReq)
	require.Equal(t, http.StatusOK, startRec.Code)

	require.Eventually(t, func() bool {
		logsReq := httptest.NewRequest(http.MethodGet, "/logs?lines=10", nil)
		logsRec := httptest.NewRecorder()
		router.ServeHTTP(logsRec, logsReq)
		return strings.Contains(logsRec.Body.String(), "hello")
	}, time.Second, 10*time.Millisecond)
}

func TestKillInvalidTypeIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	startReq := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("sleep 5"))
	startRec := httptest.NewRecorder()
	router.ServeHTTP(startRec, startReq)
	require.Equal(t, http.StatusOK, startRec.Code)

	req := httptest.NewRequest(http.MethodPost, "/kill?type=SIGFOO", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	cleanup := httptest.NewRequest(http.MethodPost, "/kill?type=SIGKILL", nil)
	cleanupRec := httptest.NewRecorder()
	router.ServeHTTP(cleanupRec, cleanup)
	require.Equal(t, http.StatusOK, cleanupRec.Code)
}

func TestRestartWithZeroTimeoutEscalatesImmediately(t *testing.T) {
	router, _ := newTestRouter(t)

	startReq := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("trap '' TERM; sleep 30"))
	startRec := httptest.NewRecorder()
	router.ServeHTTP(startRec, startReq)
	require.Equal(t, http.StatusOK, startRec.Code)

	req := httptest.NewRequest(http.MethodPost, "/restart?timeout=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "status: running")

	cleanup := httptest.NewRequest(http.MethodPost, "/kill?type=SIGKILL", nil)
	cleanupRec := httptest.NewRecorder()
	router.ServeHTTP(cleanupRec, cleanup)
	require.Equal(t, http.StatusOK, cleanupRec.Code)
}
