package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/google/uuid"
)

type CreditGrant struct {
	GrantID string
	ports.GrantRequest
}

// CreditLedger is an in-process credit collaborator keyed by grant reference.
type CreditLedger struct {
	mu       sync.Mutex
	grants   map[string]CreditGrant
	calls    int
	failures map[string]error
}

func NewCreditLedger() *CreditLedger {
	return &CreditLedger{
		grants:   make(map[string]CreditGrant),
		failures: make(map[string]error),
	}
}

// FailFor makes grants to userID return err until cleared with a nil err.
func (l *CreditLedger) FailFor(userID string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.failures, userID)
		return
	}
	l.failures[userID] = err
}

func (l *CreditLedger) Grant(_ context.Context, req ports.GrantRequest) (ports.GrantResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if err, ok := l.failures[req.UserID]; ok {
		return ports.GrantResult{}, err
	}
	reference := strings.TrimSpace(req.Reference)
	if existing, ok := l.grants[reference]; ok && reference != "" {
		return ports.GrantResult{GrantID: existing.GrantID, Replayed: true}, nil
	}
	grant := CreditGrant{GrantID: uuid.NewString(), GrantRequest: req}
	if reference == "" {
		reference = grant.GrantID
	}
	l.grants[reference] = grant
	return ports.GrantResult{GrantID: grant.GrantID}, nil
}

// Grants returns recorded grants ordered by reference.
func (l *CreditLedger) Grants() []CreditGrant {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]CreditGrant, 0, len(l.grants))
	for _, grant := range l.grants {
		items = append(items, grant)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Reference < items[j].Reference })
	return items
}

// Calls counts every Grant invocation, replays and failures included.
func (l *CreditLedger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

var _ ports.CreditGranter = (*CreditLedger)(nil)
