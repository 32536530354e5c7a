// verifier/resolver.go
package verifier

import (
	"context"
	"net"
	"sync"
	"time"
)

// cachingResolver wraps net.Resolver with a per-domain MX cache so repeated
// probes of the same domain hit DNS once per process.
type cachingResolver struct {
	resolver net.Resolver
	timeout  time.Duration

	mu    sync.RWMutex
	cache map[string][]*net.MX
}

// NewCachingResolver returns a Resolver backed by the system resolver with
// the given per-lookup timeout.
func NewCachingResolver(timeout time.Duration) Resolver {
	return &cachingResolver{
		timeout: timeout,
		cache:   make(map[string][]*net.MX),
	}
}

func (r *cachingResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	r.mu.RLock()
	if records, ok := r.cache[domain]; ok {
		r.mu.RUnlock()
		return records, nil
	}
	r.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[domain] = records
	r.mu.Unlock()

	return records, nil
}
