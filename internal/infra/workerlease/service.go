// Package workerlease provides the worker lease guarding build-tree-wide
// registries.
package workerlease

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/runoshun/confcache/internal/domain"
)

// Lease is a mutual-exclusion token. It is handed out explicitly to every
// build of a tree, never acquired ad hoc.
type Lease struct {
	id       string
	mu       sync.Mutex
	released atomic.Bool
}

var _ domain.WorkerLease = (*Lease)(nil)

// ID returns the lease identifier.
func (l *Lease) ID() string {
	return l.id
}

// WithLease runs fn while holding the lease. Calls must not nest.
func (l *Lease) WithLease(fn func() error) error {
	if l.released.Load() {
		return fmt.Errorf("%w: %s", domain.ErrLeaseReleased, l.id)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

// Service owns the single lease of one build tree.
type Service struct {
	lease *Lease
}

var _ domain.WorkerLeaseService = (*Service)(nil)

// New creates a service whose lease is identified by treeID.
func New(treeID string) *Service {
	return &Service{lease: &Lease{id: "lease-" + treeID}}
}

// CurrentWorkerLease returns the shared lease.
func (s *Service) CurrentWorkerLease() domain.WorkerLease {
	return s.lease
}

// Release invalidates the lease. Later WithLease calls fail.
func (s *Service) Release() {
	s.lease.released.Store(true)
}
