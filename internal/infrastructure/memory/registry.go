package memory

import (
	"context"
	"sync"
)

// Registry is an in-process identity registry answering "is this account
// cleared to buy".
type Registry struct {
	mu       sync.RWMutex
	verified map[string]struct{}
}

func NewRegistry(accounts ...string) *Registry {
	r := &Registry{verified: make(map[string]struct{})}
	r.add(accounts)
	return r
}

func (r *Registry) IsVerified(_ context.Context, account string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.verified[account]
	return ok, nil
}

func (r *Registry) Verify(_ context.Context, account string) error {
	r.add([]string{account})
	return nil
}

func (r *Registry) VerifyBatch(_ context.Context, accounts []string) error {
	r.add(accounts)
	return nil
}

func (r *Registry) Unverify(_ context.Context, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.verified, account)
	return nil
}

func (r *Registry) add(accounts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range accounts {
		if a != "" {
			r.verified[a] = struct{}{}
		}
	}
}
