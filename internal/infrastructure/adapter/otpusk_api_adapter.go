package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/tour"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// OtpuskAPIAdapter is the HTTP client for the remote pricing API. Calls go
// through a client-side rate limiter and a circuit breaker; a 425 "too
// early" answer is part of the protocol and never counts as a breaker
// failure. Retrying is the orchestrator's job, not the adapter's.
type OtpuskAPIAdapter struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	headers        map[string]string
	logger         *slog.Logger
}

type APIConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RateLimit      float64
	BurstLimit     int
	Headers        map[string]string
	CircuitBreaker *CircuitBreakerConfig
}

type CircuitBreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	ReadyToTrip func(counts gobreaker.Counts) bool
}

func NewOtpuskAPIAdapter(config *APIConfig, logger *slog.Logger) *OtpuskAPIAdapter {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:       100,
			IdleConnTimeout:    90 * time.Second,
			DisableCompression: false,
		},
	}

	rateLimit := config.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10.0
	}
	burst := config.BurstLimit
	if burst <= 0 {
		burst = 20
	}
	rateLimiter := rate.NewLimiter(rate.Limit(rateLimit), burst)

	cbSettings := gobreaker.Settings{
		Name: "otpusk-api",
	}
	if config.CircuitBreaker != nil {
		cbSettings.MaxRequests = config.CircuitBreaker.MaxRequests
		cbSettings.Interval = config.CircuitBreaker.Interval
		cbSettings.Timeout = config.CircuitBreaker.Timeout
		cbSettings.ReadyToTrip = config.CircuitBreaker.ReadyToTrip
	}
	if cbSettings.ReadyToTrip == nil {
		cbSettings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}

	return &OtpuskAPIAdapter{
		client:         client,
		baseURL:        strings.TrimRight(config.BaseURL, "/"),
		apiKey:         config.APIKey,
		rateLimiter:    rateLimiter,
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		headers:        config.Headers,
		logger:         logger,
	}
}

type startSearchRequest struct {
	Key string `json:"key"`
}

type startSearchResponse struct {
	Token     string `json:"token"`
	WaitUntil string `json:"waitUntil"`
}

type pollSearchResponse struct {
	Status    string                      `json:"status"`
	WaitUntil string                      `json:"waitUntil"`
	Prices    map[string]tour.PriceRecord `json:"prices"`
}

type cancelSearchRequest struct {
	Token string `json:"token"`
}

func (a *OtpuskAPIAdapter) StartSearch(ctx context.Context, key string) (search.StartResult, error) {
	endpoint := fmt.Sprintf("%s/search/start", a.baseURL)

	status, body, err := a.performRequest(ctx, http.MethodPost, endpoint, startSearchRequest{Key: key})
	if err != nil {
		return search.StartResult{}, fmt.Errorf("failed to start search for key %s: %w", key, err)
	}
	if status != http.StatusOK {
		return search.StartResult{}, fmt.Errorf("unexpected status %d starting search for key %s", status, key)
	}

	var response startSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return search.StartResult{}, fmt.Errorf("failed to decode start response: %w", err)
	}

	return search.StartResult{
		Token:     response.Token,
		WaitUntil: a.parseWaitUntil(response.WaitUntil),
	}, nil
}

func (a *OtpuskAPIAdapter) PollSearch(ctx context.Context, token string) (search.PollResult, error) {
	endpoint := fmt.Sprintf("%s/search/result?token=%s", a.baseURL, url.QueryEscape(token))

	status, body, err := a.performRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return search.PollResult{}, fmt.Errorf("failed to poll search: %w", err)
	}

	var response pollSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return search.PollResult{}, fmt.Errorf("failed to decode poll response: %w", err)
	}

	// 425 and a 200 with the in-progress marker mean the same thing.
	if status == http.StatusTooEarly || strings.EqualFold(response.Status, "IN_PROGRESS") {
		return search.PollResult{
			InProgress: true,
			WaitUntil:  a.parseWaitUntil(response.WaitUntil),
		}, nil
	}

	return search.PollResult{Prices: response.Prices}, nil
}

func (a *OtpuskAPIAdapter) CancelSearch(ctx context.Context, token string) error {
	endpoint := fmt.Sprintf("%s/search/cancel", a.baseURL)

	if _, _, err := a.performRequest(ctx, http.MethodPost, endpoint, cancelSearchRequest{Token: token}); err != nil {
		return fmt.Errorf("failed to cancel search: %w", err)
	}
	return nil
}

func (a *OtpuskAPIAdapter) FetchHotels(ctx context.Context, key string) (map[string]tour.HotelRecord, error) {
	endpoint := fmt.Sprintf("%s/hotels?key=%s", a.baseURL, url.QueryEscape(key))

	status, body, err := a.performRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hotels for key %s: %w", key, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching hotels for key %s", status, key)
	}

	var hotels map[string]tour.HotelRecord
	if err := json.Unmarshal(body, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels response: %w", err)
	}
	return hotels, nil
}

type rawResponse struct {
	status int
	body   []byte
}

func (a *OtpuskAPIAdapter) performRequest(ctx context.Context, method, endpoint string, requestBody any) (int, []byte, error) {
	if err := a.rateLimiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter error: %w", err)
	}

	result, err := a.circuitBreaker.Execute(func() (any, error) {
		status, body, httpErr := a.doHTTPRequest(ctx, method, endpoint, requestBody)
		if httpErr != nil {
			return nil, httpErr
		}

		// "Too early" is protocol, not failure; it must not trip the breaker.
		if status >= 400 && status != http.StatusTooEarly {
			return nil, fmt.Errorf("HTTP error %d: %s", status, string(body))
		}

		return &rawResponse{status: status, body: body}, nil
	})
	if err != nil {
		return 0, nil, err
	}

	raw := result.(*rawResponse)
	return raw.status, raw.body, nil
}

func (a *OtpuskAPIAdapter) doHTTPRequest(ctx context.Context, method, endpoint string, requestBody any) (int, []byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		jsonData, err := json.Marshal(requestBody)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("accept", "application/json")
	if requestBody != nil {
		request.Header.Set("content-type", "application/json")
	}
	if a.apiKey != "" {
		request.Header.Set("x-api-key", a.apiKey)
	}
	for key, value := range a.headers {
		request.Header.Set(key, value)
	}

	httpResponse, err := a.client.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request failed: %s", err.Error())
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(httpResponse.Body)

	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return httpResponse.StatusCode, responseBody, nil
}

func (a *OtpuskAPIAdapter) parseWaitUntil(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	waitUntil, err := time.Parse(time.RFC3339, value)
	if err != nil {
		a.logger.Warn("unparseable waitUntil from gateway", "value", value)
		return time.Time{}
	}
	return waitUntil
}
