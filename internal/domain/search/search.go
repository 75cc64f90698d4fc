package search

import (
	"context"
	"time"

	"github.com/michaelkobetss/test-task-otpusk/internal/domain/tour"
)

// Phase is the single tagged state of a search attempt. Exactly one phase
// is current at any time; there are no independent loading/waiting flags.
type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhaseStarting Phase = "STARTING"
	PhaseWaiting  Phase = "WAITING"
	PhasePolling  Phase = "POLLING"
	PhaseSuccess  Phase = "SUCCESS"
	PhaseEmpty    Phase = "EMPTY"
	PhaseError    Phase = "ERROR"
	PhaseAborted  Phase = "ABORTED"
)

// Terminal reports whether the phase ends an attempt. A terminal phase
// still allows a fresh user-initiated search to re-enter STARTING.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSuccess, PhaseEmpty, PhaseError, PhaseAborted:
		return true
	}
	return false
}

// Snapshot is the read-only projection of the orchestrator state consumed
// by the UI layer. It only ever exposes committed state.
type Snapshot struct {
	Phase            Phase               `json:"phase"`
	RequestID        int64               `json:"requestId"`
	Key              string              `json:"key,omitempty"`
	Token            string              `json:"-"`
	Results          []tour.EnrichedTour `json:"results"`
	Error            string              `json:"error,omitempty"`
	Info             string              `json:"info,omitempty"`
	WaitUntil        *time.Time          `json:"waitUntil,omitempty"`
	RemainingSeconds int                 `json:"remainingSeconds"`
}

// StartResult is the gateway's answer to starting a remote search job.
type StartResult struct {
	Token     string    `json:"token"`
	WaitUntil time.Time `json:"waitUntil"`
}

// PollResult is one poll response. When InProgress is set the job is not
// ready and WaitUntil carries the next allowed poll instant; otherwise
// Prices holds the (possibly empty) result set.
type PollResult struct {
	InProgress bool
	WaitUntil  time.Time
	Prices     map[string]tour.PriceRecord
}

// Gateway is the client-side contract with the remote pricing API.
type Gateway interface {
	StartSearch(ctx context.Context, key string) (StartResult, error)
	PollSearch(ctx context.Context, token string) (PollResult, error)
	CancelSearch(ctx context.Context, token string) error
}

// HotelDirectoryProvider resolves the hotel directory for a search key.
// Directories are fetched at most once per key and cached for the session.
type HotelDirectoryProvider interface {
	FetchHotels(ctx context.Context, key string) (map[string]tour.HotelRecord, error)
}

// Cooldown is a persisted server-imposed wait window. The token is kept
// alongside the instant so a restarted process can resume polling the
// same remote job instead of starting a new one.
type Cooldown struct {
	Token     string    `json:"token"`
	WaitUntil time.Time `json:"waitUntil"`
}

// CooldownStore persists cooldown windows per search key across restarts.
type CooldownStore interface {
	Get(ctx context.Context, key string) (Cooldown, bool, error)
	Set(ctx context.Context, key string, cooldown Cooldown) error
	Delete(ctx context.Context, key string) error
}
