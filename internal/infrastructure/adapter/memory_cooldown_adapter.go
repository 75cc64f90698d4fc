package adapter

import (
	"context"
	"sync"

	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
)

// MemoryCooldownAdapter keeps cooldown windows in process memory. Used when
// Redis is not configured; cooldowns then only survive for the process
// lifetime.
type MemoryCooldownAdapter struct {
	mu        sync.RWMutex
	cooldowns map[string]search.Cooldown
}

func NewMemoryCooldownAdapter() *MemoryCooldownAdapter {
	return &MemoryCooldownAdapter{cooldowns: make(map[string]search.Cooldown)}
}

func (m *MemoryCooldownAdapter) Get(_ context.Context, key string) (search.Cooldown, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cooldown, ok := m.cooldowns[key]
	return cooldown, ok, nil
}

func (m *MemoryCooldownAdapter) Set(_ context.Context, key string, cooldown search.Cooldown) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cooldowns[key] = cooldown
	return nil
}

func (m *MemoryCooldownAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cooldowns, key)
	return nil
}
