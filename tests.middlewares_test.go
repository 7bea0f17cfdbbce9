package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPIHandler() *APIHandler {
	clock := NewMockClocker()
	return NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("abc"), nil)
}

func TestMiddlewaresStacks(t *testing.T) {
	api := newTestAPIHandler()
	public, ops := api.MiddlewaresStacks()
	assert.Len(t, *public, 7)
	assert.Len(t, *ops, 6)
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) MiddlewareFunc {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				order = append(order, name)
				next(w, r, ps)
			}
		}
	}

	t.Run("empty stack returns the handler", func(t *testing.T) {
		order = nil
		m := &Middlewares{}
		m.Chain(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			order = append(order, "handler")
		})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		assert.Equal(t, []string{"handler"}, order)
	})

	t.Run("first middleware is the outermost", func(t *testing.T) {
		order = nil
		m := &Middlewares{mark("first"), mark("second"), mark("third")}
		m.Chain(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			order = append(order, "handler")
		})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	api := newTestAPIHandler()
	var got string
	h := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got = GetValueFromContext(r.Context(), RequestIDContextKey)
	})
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.Equal(t, "r:abc", got)
	assert.Equal(t, "r:abc", w.Header().Get("X-Request-ID"))
}

func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestAPIHandler()
	var nums []uint64
	h := api.RequestsCounterMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		nums = append(nums, GetRequestNumberFromContext(r.Context()))
	})
	for i := 0; i < 3; i++ {
		h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	}
	assert.Equal(t, []uint64{1, 2, 3}, nums)
	assert.Equal(t, uint64(3), api.stats.called)
}

func TestStatsMiddleware(t *testing.T) {
	api := newTestAPIHandler()
	h := api.StatsMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("code") == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("[]"))
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), httprouter.Params{{Key: "code", Value: "404"}})
	assert.Equal(t, map[int]uint64{http.StatusOK: 2, http.StatusNotFound: 1}, api.stats.status)
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	h := CORSMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.True(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestAPIHandler()
	h := api.PanicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("unexpected")
	})
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req = req.WithContext(context.WithValue(req.Context(), RequestIDContextKey, "r:abc"))
	w := httptest.NewRecorder()
	require.NotPanics(t, func() { h(w, req, nil) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"requestid":"r:abc", "message":"failed to process the request."}`, w.Body.String())
}

func TestMaintenanceModeMiddleware(t *testing.T) {
	api := newTestAPIHandler()
	called := false
	h := api.MaintenanceModeMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	api.mode.enabled.Store(true)
	api.mode.message = "upgrading"
	api.mode.started = NewMockClocker().Now()
	called = false
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/books", nil), nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"requestid":"", "message":"service currently unvailable.", "reason":"upgrading", "since":"Sun, 02 Jul 2023 00:00:00 UTC"}`, w.Body.String())
}

// TestPublicStack ensures a full public chain tags, counts and records requests.
func TestPublicStack(t *testing.T) {
	api := newTestAPIHandler()
	public, _ := api.MiddlewaresStacks()
	h := public.Chain(api.Status)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/status", nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r:abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Body.String(), `"requestid":"r:abc"`)
	assert.Equal(t, uint64(1), api.stats.called)
	assert.Equal(t, map[int]uint64{http.StatusOK: 1}, api.stats.status)
}
