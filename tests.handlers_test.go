package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// This file contains unit tests for the non book api handlers.

// TestStatusHandler ensures api handler can provides its status.
func TestStatusHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	api := NewAPIHandler(zap.NewNop(), nil, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), nil, nil)
	api.Status(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	expected := `{"requestid":"", "status":"up & running since 0 mins", "message":"Hello. Books store api is available. Enjoy :)"}`
	assert.JSONEq(t, expected, string(data))
}

// TestIndexHandler ensures the index redirects to the status endpoint.
func TestIndexHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	api := NewAPIHandler(zap.NewNop(), nil, &Statistics{}, NewMockClocker(), nil, nil)
	api.Index(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/status", w.Header().Get("Location"))
}

// TestMaintenanceHandler ensures the maintenance mode can be enabled, shown and disabled.
func TestMaintenanceHandler(t *testing.T) {
	clock := NewMockClocker()
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("abc"), nil)

	t.Run("enable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=enable&msg=upgrading", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusOK, w.Code)
		expected := `{"requestid":"", "maintenance.started":"Sun, 02 Jul 2023 00:00:00 UTC",
			"maintenance.message":"upgrading", "message":"Maintenance mode enabled successfully."}`
		assert.JSONEq(t, expected, w.Body.String())
		assert.True(t, api.mode.enabled.Load())
	})

	t.Run("show", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{{Key: "status", Value: "show"}})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		expected := `{"requestid":"", "message":"service currently unvailable.", "reason":"upgrading", "since":"Sun, 02 Jul 2023 00:00:00 UTC"}`
		assert.JSONEq(t, expected, w.Body.String())
	})

	t.Run("disable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=disable", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"requestid":"", "message":"Maintenance mode disabled successfully."}`, w.Body.String())
		assert.False(t, api.mode.enabled.Load())
	})

	t.Run("unknown status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=toggle", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestGetStatisticsHandler ensures the statistics reflect requests and books.
func TestGetStatisticsHandler(t *testing.T) {
	clock := NewMockClocker()
	fs := newTestFileStore(t, testBooks())
	bs := NewBookService(zap.NewNop(), nil, clock, fs, NewNoopQueue())
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: clock.Now(), version: "v1.0.0"}, clock, NewMockUIDHandler("abc"), bs)
	api.stats.called = 3
	api.stats.status[http.StatusOK] = 2

	req := httptest.NewRequest(http.MethodGet, "/ops/stats", nil)
	w := httptest.NewRecorder()
	api.GetStatistics(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)

	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "v1.0.0", m["app.version"])
	assert.Equal(t, float64(2), m["called"])
	assert.Equal(t, float64(3), m["books.count"])
	assert.Equal(t, "0 mins", m["uptime"])
	assert.Equal(t, map[string]interface{}{"200": float64(2)}, m["status"])
	assert.Equal(t, map[string]interface{}{"enabled": false, "started": "", "message": ""}, m["maintenance"])
}

// TestGetConfigsHandler ensures configs are served without secrets.
func TestGetConfigsHandler(t *testing.T) {
	config := &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: "8080", RequestTimeout: time.Second},
		Redis:  RedisConfig{Password: "secret"},
	}
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{}, NewMockClocker(), NewMockUIDHandler("abc"), nil)
	req := httptest.NewRequest(http.MethodGet, "/ops/configs", nil)
	w := httptest.NewRecorder()
	api.GetConfigs(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Host":"127.0.0.1"`)
	assert.NotContains(t, w.Body.String(), "secret")
}
