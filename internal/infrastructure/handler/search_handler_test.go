package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelkobetss/test-task-otpusk/internal/application/orchestrator"
	"github.com/michaelkobetss/test-task-otpusk/internal/application/session"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/tour"
	"github.com/michaelkobetss/test-task-otpusk/internal/infrastructure/adapter"
	"github.com/michaelkobetss/test-task-otpusk/internal/infrastructure/handler"
	"github.com/michaelkobetss/test-task-otpusk/internal/obs"
)

type stubGateway struct{}

func (stubGateway) StartSearch(context.Context, string) (search.StartResult, error) {
	return search.StartResult{Token: "tok-1"}, nil
}

func (stubGateway) PollSearch(context.Context, string) (search.PollResult, error) {
	return search.PollResult{Prices: map[string]tour.PriceRecord{
		"p1": {ID: "p1", Currency: "UAH", HotelID: "h1"},
	}}, nil
}

func (stubGateway) CancelSearch(context.Context, string) error { return nil }

type stubHotels struct{}

func (stubHotels) FetchHotels(context.Context, string) (map[string]tour.HotelRecord, error) {
	return map[string]tour.HotelRecord{"h1": {Name: "Grand Resort"}}, nil
}

type testEnv struct {
	router *mux.Router
	store  *session.Store
	orch   *orchestrator.Orchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewStore()
	orch := orchestrator.New(
		stubGateway{},
		stubHotels{},
		adapter.NewMemoryCooldownAdapter(),
		store,
		obs.NewMetrics(prometheus.NewRegistry()),
		logger,
		orchestrator.Config{RetryBackoff: 5 * time.Millisecond, TickInterval: 5 * time.Millisecond},
	)
	t.Cleanup(orch.Close)

	h := handler.NewSearchHandler(orch, store, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/search", h.StartSearch).Methods(http.MethodPost)
	api.HandleFunc("/search/cancel", h.CancelSearch).Methods(http.MethodPost)
	api.HandleFunc("/search/state", h.GetState).Methods(http.MethodGet)
	api.HandleFunc("/search/retries/{key}", h.GetRetries).Methods(http.MethodGet)
	api.HandleFunc("/tours/{id}", h.GetTour).Methods(http.MethodGet)
	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.HandleFunc("/invalidate/{key}", h.Invalidate).Methods(http.MethodPost)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return &testEnv{router: router, store: store, orch: orch}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()

	var response handler.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func (e *testEnv) waitForTerminal(t *testing.T) search.Snapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := e.store.Snapshot()
		if snap.Phase.Terminal() {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("no terminal phase reached")
	return search.Snapshot{}
}

func TestStartSearch_Accepted(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodPost, "/api/v1/search", `{"key": "1115"}`)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	response := decodeResponse(t, recorder)
	assert.True(t, response.Success)
	data := response.Data.(map[string]interface{})
	assert.NotZero(t, data["requestId"])
}

func TestStartSearch_MissingKey(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodPost, "/api/v1/search", `{}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	response := decodeResponse(t, recorder)
	assert.False(t, response.Success)
	assert.Equal(t, "search key is required", response.Error)
}

func TestStartSearch_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodPost, "/api/v1/search", `not json`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, decodeResponse(t, recorder).Success)
}

func TestGetState_ReflectsSearchOutcome(t *testing.T) {
	env := newTestEnv(t)

	env.do(http.MethodPost, "/api/v1/search", `{"key": "1115"}`)
	env.waitForTerminal(t)

	recorder := env.do(http.MethodGet, "/api/v1/search/state", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeResponse(t, recorder)
	require.True(t, response.Success)

	state := response.Data.(map[string]interface{})
	assert.Equal(t, string(search.PhaseSuccess), state["phase"])
	results := state["results"].([]interface{})
	require.Len(t, results, 1)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "Grand Resort", first["hotelName"])
}

func TestCancelSearch(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodPost, "/api/v1/search/cancel", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, decodeResponse(t, recorder).Success)
	assert.Equal(t, search.PhaseAborted, env.store.Snapshot().Phase)
}

func TestGetRetries_NoBudget(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodGet, "/api/v1/search/retries/1115", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeResponse(t, recorder).Data.(map[string]interface{})
	assert.Equal(t, "1115", data["key"])
	assert.Nil(t, data["retriesLeft"])
}

func TestGetRetries_WithBudget(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.BeginRequest("1115")
	require.True(t, env.store.InitBudget(id, "1115", 2))

	recorder := env.do(http.MethodGet, "/api/v1/search/retries/1115", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeResponse(t, recorder).Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["retriesLeft"])
}

func TestGetTour(t *testing.T) {
	env := newTestEnv(t)

	env.do(http.MethodPost, "/api/v1/search", `{"key": "1115"}`)
	env.waitForTerminal(t)

	recorder := env.do(http.MethodGet, "/api/v1/tours/p1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeResponse(t, recorder).Data.(map[string]interface{})
	assert.Equal(t, "p1", data["id"])
	assert.Equal(t, "Grand Resort", data["hotelName"])

	recorder = env.do(http.MethodGet, "/api/v1/tours/nope", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "tour not found", decodeResponse(t, recorder).Error)
}

func TestInvalidate(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.BeginRequest("1115")
	require.True(t, env.store.InitBudget(id, "1115", 0))

	recorder := env.do(http.MethodPost, "/api/v1/admin/invalidate/1115", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, decodeResponse(t, recorder).Success)
	_, ok := env.store.Budget("1115")
	assert.False(t, ok)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeResponse(t, recorder).Data.(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "tour-search", data["service"])
}
