package memory

import (
	"context"
	"sync"
	"time"

	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/google/uuid"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// Lock is a process-local lease for single-replica deployments and tests.
type Lock struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

func NewLock() *Lock {
	return &Lock{
		leases: make(map[string]lease),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *Lock) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if current, ok := l.leases[key]; ok && current.expiresAt.After(now) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *Lock) Release(_ context.Context, key string, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.leases[key]; ok && current.token == token {
		delete(l.leases, key)
	}
	return nil
}

var _ ports.SettlementLock = (*Lock)(nil)
