package session

import (
	"sync"

	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/tour"
)

// Store owns all orchestrator state for one session: the current snapshot,
// the tours cache, the per-key hotel directories and the per-key empty-result
// retry budgets. Every mutation that originates from a search attempt is
// fenced by the attempt's request id: a mutation whose id is no longer
// current is discarded, which is the single concurrency rule guarding the
// whole state machine. The UI layer only ever reads copies.
type Store struct {
	mu      sync.RWMutex
	current int64
	state   search.Snapshot
	tours   map[string][]tour.EnrichedTour
	hotels  map[string]map[string]tour.HotelRecord
	budgets map[string]int
}

func NewStore() *Store {
	return &Store{
		state:   search.Snapshot{Phase: search.PhaseIdle, Results: []tour.EnrichedTour{}},
		tours:   make(map[string][]tour.EnrichedTour),
		hotels:  make(map[string]map[string]tour.HotelRecord),
		budgets: make(map[string]int),
	}
}

// BeginRequest supersedes any in-flight request, assigns the next request id
// and resets the snapshot to the STARTING baseline for the given key. The
// returned id is the fence the new attempt must present on every commit.
func (s *Store) BeginRequest(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current++
	s.state = search.Snapshot{
		Phase:     search.PhaseStarting,
		RequestID: s.current,
		Key:       key,
		Results:   []tour.EnrichedTour{},
	}
	return s.current
}

// CancelRequest supersedes the in-flight request and marks the snapshot
// aborted. It returns the active token, if any, so the caller can issue a
// best-effort remote cancel.
func (s *Store) CancelRequest() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current++
	token := s.state.Token
	s.state.RequestID = s.current
	s.state.Phase = search.PhaseAborted
	s.state.Token = ""
	s.state.WaitUntil = nil
	s.state.RemainingSeconds = 0
	return token
}

// Commit applies fn to the snapshot only while id is still the current
// request. It reports whether the mutation was applied.
func (s *Store) Commit(id int64, fn func(*search.Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.current {
		return false
	}
	fn(&s.state)
	return true
}

// Snapshot returns a copy of the committed state.
func (s *Store) Snapshot() search.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Results = append([]tour.EnrichedTour(nil), s.state.Results...)
	if s.state.WaitUntil != nil {
		until := *s.state.WaitUntil
		snap.WaitUntil = &until
	}
	return snap
}

// CachedTours returns the cached result list for a key. Only non-empty
// lists are ever stored, so ok implies len > 0.
func (s *Store) CachedTours(key string) ([]tour.EnrichedTour, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tours, ok := s.tours[key]
	if !ok {
		return nil, false
	}
	return append([]tour.EnrichedTour(nil), tours...), true
}

// SetCachedTours stores a completed result list for a key. Empty lists are
// refused: an empty outcome is represented by the retry budget and the info
// message, never by the cache.
func (s *Store) SetCachedTours(id int64, key string, tours []tour.EnrichedTour) bool {
	if len(tours) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.current {
		return false
	}
	s.tours[key] = tours
	return true
}

// HotelDirectory returns the session-cached directory for a key.
func (s *Store) HotelDirectory(key string) (map[string]tour.HotelRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotels, ok := s.hotels[key]
	return hotels, ok
}

func (s *Store) SetHotelDirectory(id int64, key string, hotels map[string]tour.HotelRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.current {
		return false
	}
	s.hotels[key] = hotels
	return true
}

// Budget returns the remaining empty-result retries for a key and whether
// a budget has been created for it at all.
func (s *Store) Budget(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budget, ok := s.budgets[key]
	return budget, ok
}

// RetriesLeft is the UI projection of Budget: nil when no budget exists.
func (s *Store) RetriesLeft(key string) *int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budget, ok := s.budgets[key]
	if !ok {
		return nil
	}
	return &budget
}

// InitBudget creates the budget for a key after its first empty result.
func (s *Store) InitBudget(id int64, key string, retries int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.current {
		return false
	}
	s.budgets[key] = retries
	return true
}

// DecrBudget consumes one manual-retry credit for a key. It returns the
// remaining credits; ok is false when the mutation was fenced off or no
// budget exists.
func (s *Store) DecrBudget(id int64, key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.current {
		return 0, false
	}
	budget, ok := s.budgets[key]
	if !ok {
		return 0, false
	}
	budget--
	s.budgets[key] = budget
	return budget, true
}

// ClearBudget removes a key's budget after a non-empty result.
func (s *Store) ClearBudget(id int64, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.current {
		return false
	}
	delete(s.budgets, key)
	return true
}

// Invalidate is the external unblock path: it drops the cached tours and
// the retry budget for a key, allowing fresh searches again. The hotel
// directory stays; it is immutable for the session.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tours, key)
	delete(s.budgets, key)
}
