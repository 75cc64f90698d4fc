package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/michaelkobetss/test-task-otpusk/internal/application/session"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/tour"
	"github.com/michaelkobetss/test-task-otpusk/internal/obs"
)

// errSuperseded marks an attempt whose request id is no longer current.
// It is never surfaced to the UI layer.
var errSuperseded = errors.New("search attempt superseded")

// errStartAborted signals that the attempt already committed its terminal
// error state; callers unwind without further transitions.
var errStartAborted = errors.New("start aborted")

const (
	outcomeSuccess = "success"
	outcomeEmpty   = "empty"
	outcomeError   = "error"
	outcomeAborted = "aborted"
)

type Config struct {
	// EmptyRetryBudget is the number of manual re-submits allowed for a key
	// after its first empty result.
	EmptyRetryBudget int
	// NetworkRetries is the number of transient poll failures tolerated per
	// attempt before the attempt fails.
	NetworkRetries int
	// RetryBackoff is the fixed delay between transient-failure re-polls.
	RetryBackoff time.Duration
	// TickInterval is how often the cooldown waiter refreshes the
	// remaining-seconds projection.
	TickInterval time.Duration
	// CancelTimeout bounds the best-effort remote cancel call.
	CancelTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.EmptyRetryBudget <= 0 {
		c.EmptyRetryBudget = 2
	}
	if c.NetworkRetries <= 0 {
		c.NetworkRetries = 2
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.CancelTimeout <= 0 {
		c.CancelTimeout = 5 * time.Second
	}
	return c
}

// Orchestrator drives the search state machine: it starts remote search
// jobs, waits out server-imposed cooldowns, polls for results, retries
// transient failures, enriches and caches completed searches and reports
// terminal outcomes through the session store. At most one attempt is
// current at any time; an attempt whose request id has been superseded
// discards all of its remaining effects.
type Orchestrator struct {
	gateway   search.Gateway
	hotels    search.HotelDirectoryProvider
	cooldowns search.CooldownStore
	store     *session.Store
	metrics   *obs.Metrics
	logger    *slog.Logger
	cfg       Config

	mu     sync.Mutex
	cancel context.CancelFunc

	base       context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

func New(
	gateway search.Gateway,
	hotels search.HotelDirectoryProvider,
	cooldowns search.CooldownStore,
	store *session.Store,
	metrics *obs.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Orchestrator {
	base, baseCancel := context.WithCancel(context.Background())
	return &Orchestrator{
		gateway:    gateway,
		hotels:     hotels,
		cooldowns:  cooldowns,
		store:      store,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg.withDefaults(),
		base:       base,
		baseCancel: baseCancel,
	}
}

// Search starts an asynchronous search attempt for a key, superseding any
// attempt still in flight. It returns the new attempt's request id.
func (o *Orchestrator) Search(key string) int64 {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	prevToken := o.store.Snapshot().Token
	id := o.store.BeginRequest(key)
	ctx, cancel := context.WithCancel(o.base)
	o.cancel = cancel
	o.mu.Unlock()

	if prevToken != "" {
		go o.remoteCancel(prevToken)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(ctx, id, key)
	}()

	return id
}

// Cancel aborts the in-flight attempt, if any. The remote job is cancelled
// best-effort; local state is considered abandoned immediately.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.mu.Unlock()

	token := o.store.CancelRequest()
	if token != "" {
		go o.remoteCancel(token)
	}
	if o.metrics != nil {
		o.metrics.IncSearchOutcome(outcomeAborted)
	}
}

// Close cancels all in-flight work and waits for it to stop.
func (o *Orchestrator) Close() {
	o.baseCancel()
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, id int64, key string) {
	log := o.logger.With("attempt_id", uuid.New().String(), "request_id", id, "key", key)

	err := o.search(ctx, id, key, log)
	if err == nil {
		return
	}
	if errors.Is(err, errSuperseded) || errors.Is(err, context.Canceled) {
		log.Debug("search attempt superseded, effects discarded")
		if o.metrics != nil {
			o.metrics.IncSearchOutcome(outcomeAborted)
		}
		return
	}
	log.Error("search attempt failed", "error", err)
}

func (o *Orchestrator) search(ctx context.Context, id int64, key string, log *slog.Logger) error {
	// A cached non-empty result short-circuits all network activity.
	if cached, ok := o.store.CachedTours(key); ok {
		if !o.store.Commit(id, func(s *search.Snapshot) {
			s.Phase = search.PhaseSuccess
			s.Results = cached
		}) {
			return errSuperseded
		}
		if o.metrics != nil {
			o.metrics.IncCacheHits()
			o.metrics.IncSearchOutcome(outcomeSuccess)
		}
		log.Info("serving cached tours", "tours", len(cached))
		return nil
	}

	// An exhausted retry budget blocks the key until external invalidation.
	if budget, ok := o.store.Budget(key); ok {
		if budget <= 0 {
			log.Info("retry budget exhausted, refusing search")
			o.fail(id, "no tours were found for this destination, retry limit reached")
			return nil
		}
		remaining, ok := o.store.DecrBudget(id, key)
		if !ok {
			return errSuperseded
		}
		log.Info("retry credit consumed", "remaining", remaining)
	}

	token, waitUntil, err := o.startOrResume(ctx, id, key, log)
	if err != nil {
		if errors.Is(err, errStartAborted) {
			// terminal error already committed
			return nil
		}
		return err
	}

	if !o.store.Commit(id, func(s *search.Snapshot) { s.Token = token }) {
		return errSuperseded
	}

	netCredits := o.cfg.NetworkRetries
	for {
		if time.Until(waitUntil) > 0 {
			if !o.commitWaiting(id, waitUntil) {
				return errSuperseded
			}
			if err := o.awaitCooldown(ctx, id, waitUntil); err != nil {
				return err
			}
		}

		if !o.store.Commit(id, func(s *search.Snapshot) {
			s.Phase = search.PhasePolling
			s.WaitUntil = nil
			s.RemainingSeconds = 0
		}) {
			return errSuperseded
		}

		result, err := o.gateway.PollSearch(ctx, token)
		if o.metrics != nil {
			o.metrics.IncPollCycles()
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if netCredits <= 0 {
				log.Error("poll retries exhausted", "error", err)
				o.fail(id, "search failed, please try again later")
				return nil
			}
			netCredits--
			if !o.store.Commit(id, func(s *search.Snapshot) {
				s.Info = fmt.Sprintf("connection problem, retrying (%d left)", netCredits)
			}) {
				return errSuperseded
			}
			if o.metrics != nil {
				o.metrics.IncGatewayRetries()
			}
			log.Warn("poll failed, retrying", "error", err, "credits_left", netCredits)

			backoff := time.NewTimer(o.cfg.RetryBackoff)
			select {
			case <-ctx.Done():
				backoff.Stop()
				return ctx.Err()
			case <-backoff.C:
			}
			continue
		}

		if result.InProgress {
			waitUntil = result.WaitUntil
			if !waitUntil.After(time.Now()) {
				// A not-ready response without a future instant is malformed;
				// treated as an empty result rather than a hot poll loop.
				log.Warn("in-progress response without future waitUntil")
				return o.finishEmpty(id, key, log)
			}
			o.persistCooldown(key, search.Cooldown{Token: token, WaitUntil: waitUntil}, log)
			log.Info("search not ready, waiting", "wait_until", waitUntil)
			continue
		}

		return o.finish(ctx, id, key, result.Prices, log)
	}
}

// startOrResume returns the token and cooldown instant to wait on. When a
// persisted cooldown for the key is still in the future, the remote job it
// belongs to is resumed instead of starting a new one.
func (o *Orchestrator) startOrResume(ctx context.Context, id int64, key string, log *slog.Logger) (string, time.Time, error) {
	if cooldown, ok, err := o.cooldowns.Get(ctx, key); err != nil {
		log.Warn("cooldown lookup failed", "error", err)
	} else if ok && cooldown.Token != "" && time.Now().Before(cooldown.WaitUntil) {
		log.Info("resuming persisted cooldown", "wait_until", cooldown.WaitUntil)
		return cooldown.Token, cooldown.WaitUntil, nil
	}

	result, err := o.gateway.StartSearch(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return "", time.Time{}, ctx.Err()
		}
		log.Error("start search failed", "error", err)
		o.fail(id, "search could not be started, please try again later")
		return "", time.Time{}, errStartAborted
	}
	if result.Token == "" {
		log.Error("start search returned an empty token")
		o.fail(id, "search could not be started, please try again later")
		return "", time.Time{}, errStartAborted
	}

	o.persistCooldown(key, search.Cooldown{Token: result.Token, WaitUntil: result.WaitUntil}, log)
	return result.Token, result.WaitUntil, nil
}

func (o *Orchestrator) awaitCooldown(ctx context.Context, id int64, deadline time.Time) error {
	return awaitDeadline(ctx, deadline, o.cfg.TickInterval, func(remaining int) error {
		if !o.store.Commit(id, func(s *search.Snapshot) {
			s.RemainingSeconds = remaining
		}) {
			return errSuperseded
		}
		return nil
	})
}

func (o *Orchestrator) commitWaiting(id int64, waitUntil time.Time) bool {
	return o.store.Commit(id, func(s *search.Snapshot) {
		s.Phase = search.PhaseWaiting
		until := waitUntil
		s.WaitUntil = &until
		s.RemainingSeconds = ceilSeconds(time.Until(waitUntil))
	})
}

func (o *Orchestrator) finish(ctx context.Context, id int64, key string, prices map[string]tour.PriceRecord, log *slog.Logger) error {
	hotels, err := o.hotelDirectory(ctx, id, key)
	if err != nil {
		if errors.Is(err, errSuperseded) || ctx.Err() != nil {
			return errSuperseded
		}
		log.Error("hotel directory fetch failed", "error", err)
		o.fail(id, "hotel information is unavailable, please try again later")
		return nil
	}

	tours := tour.BuildTours(prices, hotels)
	if len(tours) == 0 {
		return o.finishEmpty(id, key, log)
	}

	if !o.store.SetCachedTours(id, key, tours) {
		return errSuperseded
	}
	o.store.ClearBudget(id, key)
	o.dropCooldown(key, log)

	if !o.store.Commit(id, func(s *search.Snapshot) {
		s.Phase = search.PhaseSuccess
		s.Results = tours
		s.Token = ""
		s.WaitUntil = nil
		s.RemainingSeconds = 0
		s.Error = ""
		s.Info = ""
	}) {
		return errSuperseded
	}
	if o.metrics != nil {
		o.metrics.IncSearchOutcome(outcomeSuccess)
	}
	log.Info("search completed", "tours", len(tours))
	return nil
}

func (o *Orchestrator) finishEmpty(id int64, key string, log *slog.Logger) error {
	remaining, ok := o.store.Budget(key)
	if !ok {
		remaining = o.cfg.EmptyRetryBudget
		if !o.store.InitBudget(id, key, remaining) {
			return errSuperseded
		}
	}
	o.dropCooldown(key, log)

	if !o.store.Commit(id, func(s *search.Snapshot) {
		s.Phase = search.PhaseEmpty
		s.Results = []tour.EnrichedTour{}
		s.Info = fmt.Sprintf("no tours found, %d manual retries remain", remaining)
		s.Token = ""
		s.WaitUntil = nil
		s.RemainingSeconds = 0
	}) {
		return errSuperseded
	}
	if o.metrics != nil {
		o.metrics.IncSearchOutcome(outcomeEmpty)
	}
	log.Info("search returned no tours", "retries_remaining", remaining)
	return nil
}

// hotelDirectory returns the directory for a key, fetching it at most once
// per session.
func (o *Orchestrator) hotelDirectory(ctx context.Context, id int64, key string) (map[string]tour.HotelRecord, error) {
	if hotels, ok := o.store.HotelDirectory(key); ok {
		return hotels, nil
	}

	hotels, err := o.hotels.FetchHotels(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch hotels for key %s: %w", key, err)
	}
	if !o.store.SetHotelDirectory(id, key, hotels) {
		return nil, errSuperseded
	}
	return hotels, nil
}

func (o *Orchestrator) fail(id int64, message string) {
	o.store.Commit(id, func(s *search.Snapshot) {
		s.Phase = search.PhaseError
		s.Error = message
		s.Token = ""
		s.WaitUntil = nil
		s.RemainingSeconds = 0
	})
	if o.metrics != nil {
		o.metrics.IncSearchOutcome(outcomeError)
	}
}

func (o *Orchestrator) persistCooldown(key string, cooldown search.Cooldown, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.CancelTimeout)
	defer cancel()

	if err := o.cooldowns.Set(ctx, key, cooldown); err != nil {
		log.Warn("failed to persist cooldown", "error", err)
	}
}

func (o *Orchestrator) dropCooldown(key string, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.CancelTimeout)
	defer cancel()

	if err := o.cooldowns.Delete(ctx, key); err != nil {
		log.Warn("failed to drop cooldown", "error", err)
	}
}

func (o *Orchestrator) remoteCancel(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.CancelTimeout)
	defer cancel()

	if err := o.gateway.CancelSearch(ctx, token); err != nil {
		o.logger.Debug("remote cancel failed", "error", err)
	}
}
