package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/michaelkobetss/test-task-otpusk/internal/application/orchestrator"
	"github.com/michaelkobetss/test-task-otpusk/internal/application/session"
)

// SearchHandler exposes the orchestrator's command set and read-only
// projections over HTTP. The view layer never mutates state directly; it
// posts commands here and re-renders from the state projection.
type SearchHandler struct {
	orchestrator *orchestrator.Orchestrator
	store        *session.Store
	logger       *slog.Logger
}

func NewSearchHandler(orch *orchestrator.Orchestrator, store *session.Store, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		orchestrator: orch,
		store:        store,
		logger:       logger,
	}
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type startSearchRequest struct {
	Key string `json:"key"`
}

// StartSearch handles the "search requested" command. The search runs
// asynchronously; clients follow up on /search/state.
func (h *SearchHandler) StartSearch(w http.ResponseWriter, r *http.Request) {
	var request startSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.Key == "" {
		h.writeErrorResponse(w, "search key is required", http.StatusBadRequest)
		return
	}

	requestID := h.orchestrator.Search(request.Key)
	h.logger.Info("search requested", "key", request.Key, "request_id", requestID)

	h.writeResponse(w, http.StatusAccepted, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"requestId": requestID},
	})
}

// CancelSearch handles the explicit cancel command.
func (h *SearchHandler) CancelSearch(w http.ResponseWriter, _ *http.Request) {
	h.orchestrator.Cancel()
	h.writeSuccessResponse(w, map[string]interface{}{"cancelled": true}, nil)
}

// GetState returns the full orchestrator snapshot projection.
func (h *SearchHandler) GetState(w http.ResponseWriter, _ *http.Request) {
	h.writeSuccessResponse(w, h.store.Snapshot(), nil)
}

// GetRetries returns the remaining empty-result retries for a key, or null
// when no budget has been created for it.
func (h *SearchHandler) GetRetries(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		h.writeErrorResponse(w, "search key is required", http.StatusBadRequest)
		return
	}

	h.writeSuccessResponse(w, map[string]interface{}{
		"key":         key,
		"retriesLeft": h.store.RetriesLeft(key),
	}, nil)
}

// GetTour returns a single enriched tour from the current results by its
// price id.
func (h *SearchHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	for _, t := range h.store.Snapshot().Results {
		if t.ID == id {
			h.writeSuccessResponse(w, t, nil)
			return
		}
	}

	h.writeErrorResponse(w, "tour not found", http.StatusNotFound)
}

// Invalidate clears the cached tours and the retry budget for a key. This
// is the only way to unblock a key whose budget reached zero.
func (h *SearchHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		h.writeErrorResponse(w, "search key is required", http.StatusBadRequest)
		return
	}

	h.store.Invalidate(key)
	h.logger.Info("search key invalidated", "key", key)
	h.writeSuccessResponse(w, map[string]interface{}{"invalidated": key}, nil)
}

// HealthCheck returns the health status of the service.
func (h *SearchHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "tour-search",
	}

	h.writeSuccessResponse(w, health, nil)
}

func (h *SearchHandler) writeSuccessResponse(w http.ResponseWriter, data interface{}, meta interface{}) {
	h.writeResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func (h *SearchHandler) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	h.writeResponse(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *SearchHandler) writeResponse(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
