package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/session"
)

func setupSessionRouter(t *testing.T) *gin.Engine {
	t.Helper()

	registry := session.NewRegistry(t.TempDir(), nil, nil, nil, false, zap.NewNop())
	t.Cleanup(registry.Close)
	handler := NewSessionHandler(registry, testValidator(), zap.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "tg-1")
		c.Next()
	})
	r.GET("/session/windows", handler.Windows)
	r.POST("/session/windows/open", handler.Open)
	r.DELETE("/session/windows/:counterpart_id", handler.Close)
	r.POST("/session/windows/:counterpart_id/toggle", handler.ToggleExpand)
	r.POST("/session/windows/minimize-all", handler.MinimizeAll)
	return r
}

type windowsResponse struct {
	Windows []session.Window `json:"windows"`
	Unread  int              `json:"unread"`
}

func openWindow(t *testing.T, router *gin.Engine, counterpartID, name string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(gin.H{"counterpart_id": counterpartID, "name": name, "online": true})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/session/windows/open", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func listWindows(t *testing.T, router *gin.Engine) windowsResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/session/windows", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp windowsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSessionOpenAndList(t *testing.T) {
	router := setupSessionRouter(t)

	rec := openWindow(t, router, "tg-2", "Alice")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := listWindows(t, router)
	require.Len(t, resp.Windows, 1)
	assert.Equal(t, "tg-2", resp.Windows[0].CounterpartID)
	assert.True(t, resp.Windows[0].Expanded)
}

func TestSessionOpenRejectsMalformedCounterpart(t *testing.T) {
	router := setupSessionRouter(t)

	rec := openWindow(t, router, "not a valid id", "X")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionOpenIsIdempotentPerCounterpart(t *testing.T) {
	router := setupSessionRouter(t)

	openWindow(t, router, "tg-2", "Alice")
	openWindow(t, router, "tg-2", "Alice")

	resp := listWindows(t, router)
	assert.Len(t, resp.Windows, 1)
}

func TestSessionCloseWindow(t *testing.T) {
	router := setupSessionRouter(t)

	openWindow(t, router, "tg-2", "Alice")

	req := httptest.NewRequest(http.MethodDelete, "/session/windows/tg-2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	resp := listWindows(t, router)
	assert.Empty(t, resp.Windows)
}

func TestSessionToggleExpand(t *testing.T) {
	router := setupSessionRouter(t)

	openWindow(t, router, "tg-2", "Alice")

	req := httptest.NewRequest(http.MethodPost, "/session/windows/tg-2/toggle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	resp := listWindows(t, router)
	require.Len(t, resp.Windows, 1)
	assert.False(t, resp.Windows[0].Expanded)
}

func TestSessionMinimizeAll(t *testing.T) {
	router := setupSessionRouter(t)

	openWindow(t, router, "tg-2", "Alice")
	openWindow(t, router, "tg-3", "Bob")

	req := httptest.NewRequest(http.MethodPost, "/session/windows/minimize-all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	resp := listWindows(t, router)
	assert.Empty(t, resp.Windows)
}
